package utils

import (
	"sync"
	"testing"

	"go.viam.com/test"
)

func TestGroupWorkParallel(t *testing.T) {
	origFactor := ParallelFactor
	defer func() {
		ParallelFactor = origFactor
	}()

	for _, tc := range []struct {
		factor, total, groups, lastSize int
	}{
		{4, 10, 4, 4},
		{4, 3, 3, 1},
		{1, 7, 1, 7},
		{8, 224, 8, 28},
	} {
		ParallelFactor = tc.factor
		test.That(t, NumGroups(tc.total), test.ShouldEqual, tc.groups)

		var mu sync.Mutex
		sizes := map[int]int{}
		seen := make([]int, tc.total)
		GroupWorkParallel(tc.total, func(groupNum, groupSize, from, to int) MemberWorkFunc {
			mu.Lock()
			sizes[groupNum] = groupSize
			mu.Unlock()
			return func(memberNum, workNum int) {
				seen[workNum]++
			}
		})
		test.That(t, sizes, test.ShouldHaveLength, tc.groups)
		test.That(t, sizes[tc.groups-1], test.ShouldEqual, tc.lastSize)
		for _, count := range seen {
			test.That(t, count, test.ShouldEqual, 1)
		}
	}
}

func TestGroupWorkParallelEmpty(t *testing.T) {
	called := false
	GroupWorkParallel(0, func(groupNum, groupSize, from, to int) MemberWorkFunc {
		called = true
		return nil
	})
	test.That(t, called, test.ShouldBeFalse)
	test.That(t, NumGroups(0), test.ShouldEqual, 1)
}
