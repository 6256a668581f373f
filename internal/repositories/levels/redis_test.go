package levels

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/dunnston/dungeongraph/internal/domain/level"
	apperr "github.com/dunnston/dungeongraph/internal/errors"
)

type RedisRepoTestSuite struct {
	suite.Suite
	mockClient *redis.Client
	mock       redismock.ClientMock
	repo       Repository
}

func (s *RedisRepoTestSuite) SetupTest() {
	s.mockClient, s.mock = redismock.NewClientMock()
	s.repo = NewRedisRepository(s.mockClient)
}

func (s *RedisRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestRedisRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepoTestSuite))
}

func testLevel(id string) *level.Level {
	return &level.Level{
		ID:       id,
		Metadata: level.Metadata{Name: "Test Level", Difficulty: level.DifficultyEasy},
		Nodes: []level.Node{
			{ID: "start", Kind: level.KindStart, Start: &level.StartPayload{WelcomeMessage: "Hi."}},
			{ID: "end", Kind: level.KindEnd, End: &level.EndPayload{}},
		},
		Edges: []level.Edge{
			{ID: "e1", Source: "start", Target: "end"},
		},
	}
}

func (s *RedisRepoTestSuite) TestCreate() {
	ctx := context.Background()
	l := testLevel("crypt-1")
	data, err := json.Marshal(l)
	s.Require().NoError(err)

	// Happy path
	s.mock.ExpectSIsMember("levels", "crypt-1").SetVal(false)
	s.mock.ExpectSet("level:crypt-1", string(data), 0).SetVal("OK")
	s.mock.ExpectSAdd("levels", "crypt-1").SetVal(1)

	s.NoError(s.repo.Create(ctx, l))

	// Duplicate
	s.mock.ExpectSIsMember("levels", "crypt-1").SetVal(true)

	err = s.repo.Create(ctx, l)
	s.Error(err)
	s.Equal(apperr.CodeAlreadyExists, apperr.GetCode(err))

	// Input validation
	s.Error(s.repo.Create(ctx, nil))
	s.Error(s.repo.Create(ctx, &level.Level{}))
}

func (s *RedisRepoTestSuite) TestGet() {
	ctx := context.Background()
	l := testLevel("crypt-1")
	data, err := json.Marshal(l)
	s.Require().NoError(err)

	// Happy path
	s.mock.ExpectGet("level:crypt-1").SetVal(string(data))

	got, err := s.repo.Get(ctx, "crypt-1")
	s.NoError(err)
	s.Equal("crypt-1", got.ID)
	s.Len(got.Nodes, 2)

	// Missing
	s.mock.ExpectGet("level:gone").RedisNil()

	_, err = s.repo.Get(ctx, "gone")
	s.True(apperr.IsNotFound(err))

	// Dependency error
	s.mock.ExpectGet("level:crypt-1").SetErr(errors.New("redis error"))

	_, err = s.repo.Get(ctx, "crypt-1")
	s.Error(err)
}

func (s *RedisRepoTestSuite) TestUpdate() {
	ctx := context.Background()
	l := testLevel("crypt-1")
	data, err := json.Marshal(l)
	s.Require().NoError(err)

	// Happy path
	s.mock.ExpectSIsMember("levels", "crypt-1").SetVal(true)
	s.mock.ExpectSet("level:crypt-1", string(data), 0).SetVal("OK")
	s.mock.ExpectSAdd("levels", "crypt-1").SetVal(1)

	s.NoError(s.repo.Update(ctx, l))

	// Missing
	s.mock.ExpectSIsMember("levels", "crypt-1").SetVal(false)

	err = s.repo.Update(ctx, l)
	s.True(apperr.IsNotFound(err))
}

func (s *RedisRepoTestSuite) TestDelete() {
	ctx := context.Background()

	s.mock.ExpectDel("level:crypt-1").SetVal(1)
	s.mock.ExpectSRem("levels", "crypt-1").SetVal(1)

	s.NoError(s.repo.Delete(ctx, "crypt-1"))
}

func (s *RedisRepoTestSuite) TestList() {
	ctx := context.Background()
	l1 := testLevel("crypt-1")
	l2 := testLevel("crypt-2")
	data1, err := json.Marshal(l1)
	s.Require().NoError(err)
	data2, err := json.Marshal(l2)
	s.Require().NoError(err)

	// Documents are fetched concurrently, so expectation order is loose
	s.mock.MatchExpectationsInOrder(false)
	s.mock.ExpectSMembers("levels").SetVal([]string{"crypt-2", "crypt-1"})
	s.mock.ExpectGet("level:crypt-1").SetVal(string(data1))
	s.mock.ExpectGet("level:crypt-2").SetVal(string(data2))

	got, err := s.repo.List(ctx)
	s.NoError(err)
	s.Require().Len(got, 2)
	s.Equal("crypt-1", got[0].ID)
	s.Equal("crypt-2", got[1].ID)
}

func (s *RedisRepoTestSuite) TestListSkipsStaleIndexMembers() {
	ctx := context.Background()
	l1 := testLevel("crypt-1")
	data1, err := json.Marshal(l1)
	s.Require().NoError(err)

	s.mock.MatchExpectationsInOrder(false)
	s.mock.ExpectSMembers("levels").SetVal([]string{"crypt-1", "stale"})
	s.mock.ExpectGet("level:crypt-1").SetVal(string(data1))
	s.mock.ExpectGet("level:stale").RedisNil()

	got, err := s.repo.List(ctx)
	s.NoError(err)
	s.Require().Len(got, 1)
	s.Equal("crypt-1", got[0].ID)
}

func (s *RedisRepoTestSuite) TestListSummaries() {
	ctx := context.Background()
	l1 := testLevel("crypt-1")
	data1, err := json.Marshal(l1)
	s.Require().NoError(err)

	s.mock.MatchExpectationsInOrder(false)
	s.mock.ExpectSMembers("levels").SetVal([]string{"crypt-1"})
	s.mock.ExpectGet("level:crypt-1").SetVal(string(data1))

	summaries, err := s.repo.ListSummaries(ctx)
	s.NoError(err)
	s.Require().Len(summaries, 1)
	s.Equal("Test Level", summaries[0].Name)
	s.Equal(level.DifficultyEasy, summaries[0].Difficulty)
}
