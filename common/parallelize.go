package common

import (
	"runtime"
	"sync"
)

// Parallelize process in parallel the work function over [0, nbIterations)
func Parallelize(nbIterations int, work func(start, stop int), maxCpus ...int) {

	nbTasks := runtime.NumCPU()
	if len(maxCpus) == 1 {
		nbTasks = maxCpus[0]
	}

	if nbIterations <= 0 {
		return
	}

	nbIterationsPerCpus := nbIterations / nbTasks

	// more CPUs than iterations: a CPU works on exactly one iteration
	if nbIterationsPerCpus < 1 {
		nbIterationsPerCpus = 1
		nbTasks = nbIterations
	}

	var wg sync.WaitGroup

	extraTasks := nbIterations - (nbTasks * nbIterationsPerCpus)
	extraTasksOffset := 0

	for i := 0; i < nbTasks; i++ {
		wg.Add(1)
		_start := i*nbIterationsPerCpus + extraTasksOffset
		_stop := _start + nbIterationsPerCpus
		if extraTasks > 0 {
			_stop++
			extraTasks--
			extraTasksOffset++
		}
		go func() {
			work(_start, _stop)
			wg.Done()
		}()
	}

	wg.Wait()
}
