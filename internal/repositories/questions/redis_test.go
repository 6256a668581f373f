package questions

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/dunnston/dungeongraph/internal/domain/combat"
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

func (s *RedisRepoTestSuite) TestCreate() {
	ctx := context.Background()
	q := question("q-attack", string(combat.ActionBasicAttack))
	data, err := json.Marshal(q)
	s.Require().NoError(err)

	// Typed question lands in the global set and its action index
	s.mock.ExpectSet("question:q-attack", string(data), 0).SetVal("OK")
	s.mock.ExpectSAdd("questions", "q-attack").SetVal(1)
	s.mock.ExpectSAdd("questions:action:basic_attack", "q-attack").SetVal(1)

	s.NoError(s.repo.Create(ctx, q))

	// Untyped question skips the action index
	untyped := question("q-riddle", "")
	data, err = json.Marshal(untyped)
	s.Require().NoError(err)

	s.mock.ExpectSet("question:q-riddle", string(data), 0).SetVal("OK")
	s.mock.ExpectSAdd("questions", "q-riddle").SetVal(1)

	s.NoError(s.repo.Create(ctx, untyped))

	// Input validation
	s.Error(s.repo.Create(ctx, nil))
}

func (s *RedisRepoTestSuite) TestGet() {
	ctx := context.Background()
	q := question("q-attack", string(combat.ActionBasicAttack))
	data, err := json.Marshal(q)
	s.Require().NoError(err)

	s.mock.ExpectGet("question:q-attack").SetVal(string(data))

	got, err := s.repo.Get(ctx, "q-attack")
	s.NoError(err)
	s.Equal("What is 2 + 2?", got.Prompt)

	s.mock.ExpectGet("question:gone").RedisNil()

	_, err = s.repo.Get(ctx, "gone")
	s.True(apperr.IsNotFound(err))
}

func (s *RedisRepoTestSuite) TestGetRandom() {
	ctx := context.Background()
	q := question("q-dodge", string(combat.ActionDodge))
	data, err := json.Marshal(q)
	s.Require().NoError(err)

	// Scoped pick reads the action index
	s.mock.ExpectSRandMember("questions:action:dodge").SetVal("q-dodge")
	s.mock.ExpectGet("question:q-dodge").SetVal(string(data))

	got, err := s.repo.GetRandom(ctx, string(combat.ActionDodge))
	s.NoError(err)
	s.Equal("q-dodge", got.ID)

	// Unscoped pick reads the global set
	s.mock.ExpectSRandMember("questions").SetVal("q-dodge")
	s.mock.ExpectGet("question:q-dodge").SetVal(string(data))

	got, err = s.repo.GetRandom(ctx, "")
	s.NoError(err)
	s.Equal("q-dodge", got.ID)

	// Empty pool
	s.mock.ExpectSRandMember("questions:action:heal").RedisNil()

	_, err = s.repo.GetRandom(ctx, string(combat.ActionHeal))
	s.True(apperr.IsNotFound(err))
}

func (s *RedisRepoTestSuite) TestDelete() {
	ctx := context.Background()
	q := question("q-dodge", string(combat.ActionDodge))
	data, err := json.Marshal(q)
	s.Require().NoError(err)

	// Delete fetches the document first to clean the action index
	s.mock.ExpectGet("question:q-dodge").SetVal(string(data))
	s.mock.ExpectDel("question:q-dodge").SetVal(1)
	s.mock.ExpectSRem("questions", "q-dodge").SetVal(1)
	s.mock.ExpectSRem("questions:action:dodge", "q-dodge").SetVal(1)

	s.NoError(s.repo.Delete(ctx, "q-dodge"))

	// Deleting a missing question still clears the id sets
	s.mock.ExpectGet("question:gone").RedisNil()
	s.mock.ExpectDel("question:gone").SetVal(0)
	s.mock.ExpectSRem("questions", "gone").SetVal(0)

	s.NoError(s.repo.Delete(ctx, "gone"))
}

func (s *RedisRepoTestSuite) TestList() {
	ctx := context.Background()
	q1 := question("q-a", "")
	q2 := question("q-b", "")
	data1, err := json.Marshal(q1)
	s.Require().NoError(err)
	data2, err := json.Marshal(q2)
	s.Require().NoError(err)

	s.mock.ExpectSMembers("questions").SetVal([]string{"q-b", "q-a"})
	s.mock.ExpectGet("question:q-a").SetVal(string(data1))
	s.mock.ExpectGet("question:q-b").SetVal(string(data2))

	got, err := s.repo.List(ctx)
	s.NoError(err)
	s.Require().Len(got, 2)
	s.Equal("q-a", got[0].ID)
	s.Equal("q-b", got[1].ID)
}
