//go:build integration

package lock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"guestgate/internal/registration/lock"
	"guestgate/pkg/testutil/containers"
)

type RedisLockerSuite struct {
	suite.Suite
	redis  *containers.RedisContainer
	locker *lock.RedisLocker
}

func TestRedisLockerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisLockerSuite))
}

func (s *RedisLockerSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.locker = lock.NewRedisLocker(s.redis.Client)
}

func (s *RedisLockerSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisLockerSuite) TestMutualExclusion() {
	ctx := context.Background()

	const workers = 10
	var active, maxActive int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := s.locker.Acquire(ctx, "host-1")
			s.Require().NoError(err)
			defer release()

			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	s.Equal(1, maxActive)
}

func (s *RedisLockerSuite) TestReleaseAllowsNextHolder() {
	ctx := context.Background()

	release, err := s.locker.Acquire(ctx, "host-2")
	s.Require().NoError(err)
	release()

	acquireCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	release2, err := s.locker.Acquire(acquireCtx, "host-2")
	s.Require().NoError(err, "released lock must be reacquirable")
	release2()
}

func (s *RedisLockerSuite) TestContextCancellationWhileWaiting() {
	ctx := context.Background()

	release, err := s.locker.Acquire(ctx, "host-3")
	s.Require().NoError(err)
	defer release()

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()

	_, err = s.locker.Acquire(waitCtx, "host-3")
	s.ErrorIs(err, context.DeadlineExceeded)
}
