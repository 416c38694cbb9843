package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/brankow/citation-extraction/internal/infrastructure/monitoring/logging"
	apperrors "github.com/brankow/citation-extraction/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache *ResponseCache
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	s.cache = newFromClient(db, "test", time.Hour, logging.NewNopLogger())
}

func (s *CacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *CacheTestSuite) TestGet_Hit() {
	s.mock.ExpectGet("test:llm:abc123").SetVal(`{"references": []}`)

	val, ok, err := s.cache.Get(context.Background(), "abc123")
	assert.NoError(s.T(), err)
	assert.True(s.T(), ok)
	assert.Equal(s.T(), `{"references": []}`, val)
}

func (s *CacheTestSuite) TestGet_Miss() {
	s.mock.ExpectGet("test:llm:abc123").RedisNil()

	val, ok, err := s.cache.Get(context.Background(), "abc123")
	assert.NoError(s.T(), err, "a miss is not an error")
	assert.False(s.T(), ok)
	assert.Empty(s.T(), val)
}

func (s *CacheTestSuite) TestGet_Error() {
	s.mock.ExpectGet("test:llm:abc123").SetErr(errors.New("connection reset"))

	_, ok, err := s.cache.Get(context.Background(), "abc123")
	assert.False(s.T(), ok)
	assert.Error(s.T(), err)
	assert.True(s.T(), apperrors.IsCode(err, apperrors.ErrCodeCacheError))
}

func (s *CacheTestSuite) TestSet() {
	s.mock.ExpectSet("test:llm:abc123", `{"accessions": []}`, time.Hour).SetVal("OK")

	err := s.cache.Set(context.Background(), "abc123", `{"accessions": []}`)
	assert.NoError(s.T(), err)
}

func (s *CacheTestSuite) TestSet_Error() {
	s.mock.ExpectSet("test:llm:abc123", "v", time.Hour).SetErr(errors.New("readonly replica"))

	err := s.cache.Set(context.Background(), "abc123", "v")
	assert.Error(s.T(), err)
	assert.True(s.T(), apperrors.IsCode(err, apperrors.ErrCodeCacheError))
}

func (s *CacheTestSuite) TestPing() {
	s.mock.ExpectPing().SetVal("PONG")
	assert.NoError(s.T(), s.cache.Ping(context.Background()))
}

func TestCacheTestSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func TestDefaultPrefix(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := newFromClient(db, "", time.Minute, logging.NewNopLogger())

	mock.ExpectGet("citex:llm:k").RedisNil()
	_, ok, err := cache.Get(context.Background(), "k")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
