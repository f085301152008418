package usecase_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/mut-digital/mutbot/pkg/domain/types"
	"github.com/mut-digital/mutbot/pkg/usecase"
)

func TestDedupBasic(t *testing.T) {
	filter := usecase.NewDedupFilter()

	gt.Bool(t, filter.IsDuplicate("wamid.1")).False()
	filter.MarkProcessed("wamid.1")
	gt.Bool(t, filter.IsDuplicate("wamid.1")).True()
	gt.Bool(t, filter.IsDuplicate("wamid.2")).False()
}

func TestDedupCapacityInvariant(t *testing.T) {
	capacity := 5
	filter := usecase.NewDedupFilter(usecase.WithDedupCapacity(capacity))

	for i := 0; i < capacity+1; i++ {
		filter.MarkProcessed(types.MessageID(fmt.Sprintf("wamid.%d", i)))
	}

	gt.Number(t, filter.Tracked()).Equal(capacity)
	// The oldest-inserted ID is the one that went
	gt.Bool(t, filter.IsDuplicate("wamid.0")).False()
	for i := 1; i <= capacity; i++ {
		gt.Bool(t, filter.IsDuplicate(types.MessageID(fmt.Sprintf("wamid.%d", i)))).True()
	}
}

func TestDedupTTLPurge(t *testing.T) {
	ttl := time.Hour
	base := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	now := base
	filter := usecase.NewDedupFilter(
		usecase.WithDedupTTL(ttl),
		usecase.WithDedupCapacity(2),
		usecase.WithDedupClock(func() time.Time { return now }))

	filter.MarkProcessed("wamid.old")
	gt.Bool(t, filter.IsDuplicate("wamid.old")).True()

	now = base.Add(ttl + time.Minute)
	gt.Bool(t, filter.IsDuplicate("wamid.old")).False()

	// The aged ID is purged on the next insert and does not count against
	// capacity: both fresh IDs fit without eviction
	filter.MarkProcessed("wamid.a")
	filter.MarkProcessed("wamid.b")
	gt.Number(t, filter.Tracked()).Equal(2)
	gt.Bool(t, filter.IsDuplicate("wamid.a")).True()
	gt.Bool(t, filter.IsDuplicate("wamid.b")).True()
}

func TestDedupReprocessSameID(t *testing.T) {
	filter := usecase.NewDedupFilter(usecase.WithDedupCapacity(3))

	filter.MarkProcessed("wamid.1")
	filter.MarkProcessed("wamid.1")
	gt.Number(t, filter.Tracked()).Equal(1)
}
