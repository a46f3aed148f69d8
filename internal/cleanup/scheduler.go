package cleanup

import (
	"log"
	"os"
	"path/filepath"
	"time"
)

// JobSweeper removes terminal jobs older than the given age
type JobSweeper interface {
	Sweep(maxAge time.Duration) int
}

// Scheduler periodically sweeps the job table and removes stale temp files.
// Lifecycle is explicit: the host process calls Start and Stop.
type Scheduler struct {
	sweeper  JobSweeper
	tempDir  string
	interval time.Duration
	maxAge   time.Duration
	stopChan chan struct{}
}

// NewScheduler creates a scheduler; it does nothing until Start is called
func NewScheduler(sweeper JobSweeper, tempDir string, interval, maxAge time.Duration) *Scheduler {
	return &Scheduler{
		sweeper:  sweeper,
		tempDir:  tempDir,
		interval: interval,
		maxAge:   maxAge,
		stopChan: make(chan struct{}),
	}
}

// Start launches the periodic sweep
func (s *Scheduler) Start() {
	ticker := time.NewTicker(s.interval)

	go func() {
		for {
			select {
			case <-ticker.C:
				s.run()
			case <-s.stopChan:
				ticker.Stop()
				return
			}
		}
	}()

	log.Printf("Cleanup scheduler started (interval: %s, max age: %s)", s.interval, s.maxAge)
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
	log.Println("Cleanup scheduler stopped")
}

func (s *Scheduler) run() {
	if s.sweeper != nil {
		if removed := s.sweeper.Sweep(s.maxAge); removed > 0 {
			log.Printf("Job sweep complete: %d old jobs removed", removed)
		}
	}
	if s.tempDir != "" {
		s.cleanOldFiles()
	}
}

// cleanOldFiles removes files older than maxAge from the temp directory
func (s *Scheduler) cleanOldFiles() {
	now := time.Now()
	var deletedCount int

	err := filepath.Walk(s.tempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip files we can't access
		}
		if info.IsDir() {
			return nil
		}

		if now.Sub(info.ModTime()) > s.maxAge {
			if err := os.Remove(path); err != nil {
				log.Printf("Failed to delete old file %s: %v", path, err)
			} else {
				deletedCount++
			}
		}
		return nil
	})

	if err != nil {
		log.Printf("Error during cleanup: %v", err)
	}
	if deletedCount > 0 {
		log.Printf("Cleanup complete: %d temp files deleted", deletedCount)
	}
}

// EnsureTempDirExists creates the temp directory if it doesn't exist
func EnsureTempDirExists(tempDir string) error {
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return err
	}
	log.Printf("Temp directory ready: %s", tempDir)
	return nil
}
