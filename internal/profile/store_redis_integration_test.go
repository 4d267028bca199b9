//go:build integration

package profile_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"vitrin/internal/profile"
	"vitrin/pkg/platform/sentinel"
	"vitrin/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *profile.Redis
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = profile.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.redis.FlushAll(ctx)
	s.Require().NoError(err)
}

func makeProfile(uid string) *profile.Profile {
	now := time.Now().Truncate(time.Second)
	return &profile.Profile{
		UID:         uid,
		FirstName:   "Aziz",
		LastName:    "Karimov",
		FullName:    "Aziz Karimov",
		DisplayName: "Aziz",
		Email:       "aziz@example.com",
		Phone:       "+998 90 123 45 67",
		Address:     "Tashkent",
		BirthDate:   "1995-04-12",
		Gender:      profile.GenderMale,
		Role:        profile.RoleCustomer,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *RedisStoreSuite) TestCreateAndGet() {
	ctx := context.Background()
	uid := uuid.NewString()
	p := makeProfile(uid)

	s.Require().NoError(s.store.Create(ctx, p))

	got, err := s.store.Get(ctx, uid)
	s.Require().NoError(err)
	s.Equal(p.FullName, got.FullName)
	s.Equal(p.Phone, got.Phone)
	s.Equal(p.Gender, got.Gender)
	s.Equal(p.CreatedAt.UnixNano(), got.CreatedAt.UnixNano())
}

func (s *RedisStoreSuite) TestGetMissingReturnsNotFound() {
	ctx := context.Background()
	_, err := s.store.Get(ctx, uuid.NewString())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestCreateOverwrites() {
	ctx := context.Background()
	uid := uuid.NewString()

	first := makeProfile(uid)
	s.Require().NoError(s.store.Create(ctx, first))

	second := makeProfile(uid)
	second.FirstName = "Dilnoza"
	second.LastName = "Karimova"
	second.FullName = "Dilnoza Karimova"
	s.Require().NoError(s.store.Create(ctx, second))

	got, err := s.store.Get(ctx, uid)
	s.Require().NoError(err)
	s.Equal("Dilnoza Karimova", got.FullName)
}

func (s *RedisStoreSuite) TestUpdatePreservesUntouchedFields() {
	ctx := context.Background()
	uid := uuid.NewString()
	s.Require().NoError(s.store.Create(ctx, makeProfile(uid)))

	updated, err := s.store.Update(ctx, uid, profile.Update{
		FirstName: "Dilnoza",
		LastName:  "Karimova",
		Phone:     "+998 91 765 43 21",
		Address:   "Samarkand",
	})
	s.Require().NoError(err)
	s.Equal("Dilnoza Karimova", updated.FullName)
	s.Equal("1995-04-12", updated.BirthDate)
	s.Equal(profile.GenderMale, updated.Gender)
	s.Equal("aziz@example.com", updated.Email)

	got, err := s.store.Get(ctx, uid)
	s.Require().NoError(err)
	s.Equal(updated.FullName, got.FullName)
	s.Equal(updated.Address, got.Address)
}

func (s *RedisStoreSuite) TestUpdateMissingReturnsNotFound() {
	ctx := context.Background()
	_, err := s.store.Update(ctx, uuid.NewString(), profile.Update{
		FirstName: "A",
		LastName:  "B",
		Phone:     "+998 90 000 00 00",
		Address:   "X",
	})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestConcurrentCreatesOnDistinctKeys() {
	ctx := context.Background()

	const goroutines = 20
	uids := make([]string, goroutines)
	for i := range uids {
		uids[i] = uuid.NewString()
	}

	var wg sync.WaitGroup
	var successCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if err := s.store.Create(ctx, makeProfile(uids[idx])); err == nil {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()
	s.Equal(int32(goroutines), successCount.Load(), "all creates should succeed")

	for _, uid := range uids {
		got, err := s.store.Get(ctx, uid)
		s.Require().NoError(err)
		s.Equal(uid, got.UID)
	}
}
