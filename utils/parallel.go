package utils

import (
	"runtime"
	"sync"

	goutils "go.viam.com/utils"
)

// ParallelFactor controls the max level of parallelization. This might be useful
// to set in tests where too much parallelism actually slows tests down in
// aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
}

type (
	// MemberWorkFunc runs for each work item (member) of a group.
	MemberWorkFunc func(memberNum, workNum int)
	// GroupWorkFunc runs to determine what work members should do, if any.
	GroupWorkFunc func(groupNum, groupSize, from, to int) MemberWorkFunc
)

// NumGroups returns how many groups GroupWorkParallel splits totalSize items into:
// min(ParallelFactor, totalSize), and never less than one.
func NumGroups(totalSize int) int {
	return MaxInt(1, MinInt(ParallelFactor, totalSize))
}

// GroupWorkParallel splits totalSize items into NumGroups contiguous bands of totalSize/NumGroups
// items, with the last band also taking the remainder. Each band runs on its own goroutine and
// the call returns once every band is done. Bands never overlap, so workers may write into
// disjoint regions of a shared buffer without locking.
func GroupWorkParallel(totalSize int, groupWork GroupWorkFunc) {
	if totalSize <= 0 {
		return
	}
	numGroups := NumGroups(totalSize)
	groupSize := totalSize / numGroups
	extra := totalSize % numGroups

	var wait sync.WaitGroup
	wait.Add(numGroups)
	for groupNum := 0; groupNum < numGroups; groupNum++ {
		from := groupSize * groupNum
		to := from + groupSize
		if groupNum == numGroups-1 {
			to += extra
		}
		goutils.PanicCapturingGo(func() {
			defer wait.Done()
			memberWork := groupWork(groupNum, to-from, from, to)
			if memberWork == nil {
				return
			}
			memberNum := 0
			for workNum := from; workNum < to; workNum++ {
				memberWork(memberNum, workNum)
				memberNum++
			}
		})
	}
	wait.Wait()
}
