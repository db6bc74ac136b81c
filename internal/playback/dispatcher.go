// ABOUTME: Background playback dispatcher
// ABOUTME: Runs each trigger on its own goroutine, serialised per output device
package playback

import (
	"log"
	"sync"
	"time"
)

// Result is the outcome of one triggered playback
type Result struct {
	Path     string
	Device   int
	Err      error
	Duration time.Duration
}

// Dispatcher keeps hosts responsive by playing off the caller's goroutine
type Dispatcher struct {
	player Player

	mu    sync.Mutex
	locks map[int]*sync.Mutex
	wg    sync.WaitGroup
}

// NewDispatcher creates a dispatcher around a player
func NewDispatcher(player Player) *Dispatcher {
	return &Dispatcher{
		player: player,
		locks:  make(map[int]*sync.Mutex),
	}
}

func (d *Dispatcher) deviceLock(device int) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()

	lock, ok := d.locks[device]
	if !ok {
		lock = &sync.Mutex{}
		d.locks[device] = lock
	}
	return lock
}

// Trigger starts playback and returns a channel that receives exactly one Result.
// Triggers on the same device play one after another in no guaranteed order.
func (d *Dispatcher) Trigger(clipPath string, deviceIndex int) <-chan Result {
	results := make(chan Result, 1)
	lock := d.deviceLock(deviceIndex)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(results)

		lock.Lock()
		defer lock.Unlock()

		start := time.Now()
		err := d.player.Play(clipPath, deviceIndex)
		if err != nil {
			log.Printf("Playback of %s failed: %v", clipPath, err)
		}
		results <- Result{
			Path:     clipPath,
			Device:   deviceIndex,
			Err:      err,
			Duration: time.Since(start),
		}
	}()

	return results
}

// Wait blocks until every triggered playback has finished
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
