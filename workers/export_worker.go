package workers

import (
	"bytes"
	"database/sql"
	"fmt"
	"log"
	"sync"

	"github.com/camden-git/attendancebackend/database"
	"github.com/camden-git/attendancebackend/media"
	"github.com/camden-git/attendancebackend/repository"
	"github.com/camden-git/attendancebackend/utils"
)

type ExportJob struct {
	JobID   uint
	Day     string
	Session string
}

// ExportProcessor runs CSV export jobs off the request path. Jobs are
// deduplicated while queued or in flight.
type ExportProcessor struct {
	JobQueue  chan ExportJob
	DB        *sql.DB
	Repo      repository.ExportJobRepositoryInterface
	Processor *media.Processor
	Wg        sync.WaitGroup
	StopChan  chan struct{}
	Pending   map[string]bool
	Mutex     sync.Mutex
}

func NewExportProcessor(db *sql.DB, repo repository.ExportJobRepositoryInterface, processor *media.Processor, queueSize, numWorkers int) *ExportProcessor {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 20
	}
	proc := &ExportProcessor{
		JobQueue:  make(chan ExportJob, queueSize),
		DB:        db,
		Repo:      repo,
		Processor: processor,
		StopChan:  make(chan struct{}),
		Pending:   make(map[string]bool),
	}
	proc.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go proc.worker(i)
	}
	log.Printf("Started %d export worker(s) with queue size %d", numWorkers, queueSize)
	return proc
}

func (ep *ExportProcessor) worker(id int) {
	defer ep.Wg.Done()

	log.Printf("Export worker %d started", id)
	for {
		select {
		case job, ok := <-ep.JobQueue:
			if !ok {
				log.Printf("Export worker %d stopping: Job queue closed", id)
				return
			}

			pendingKey := fmt.Sprintf("%s:%s", job.Day, job.Session)
			log.Printf("Worker %d: Received export job %d for %s", id, job.JobID, pendingKey)

			if err := ep.Repo.MarkProcessing(job.JobID); err != nil {
				log.Printf("Worker %d: ERROR marking export job %d processing: %v. Skipping job.", id, job.JobID, err)
				ep.Mutex.Lock()
				delete(ep.Pending, pendingKey)
				ep.Mutex.Unlock()
				continue
			}

			ep.processExportTask(id, job)

			ep.Mutex.Lock()
			delete(ep.Pending, pendingKey)
			ep.Mutex.Unlock()

		case <-ep.StopChan:
			log.Printf("Export worker %d stopping: Stop signal received", id)
			return
		}
	}
}

// processExportTask builds the CSV and records the outcome on the job row.
func (ep *ExportProcessor) processExportTask(id int, job ExportJob) {
	var taskErr error
	var filePathPtr *string

	rows, queryErr := database.GetAttendanceByDay(ep.DB, job.Day, job.Session)
	if queryErr != nil {
		taskErr = fmt.Errorf("attendance query failed: %w", queryErr)
		log.Printf("Worker %d: ERROR %v", id, taskErr)
	} else {
		var buf bytes.Buffer
		if csvErr := utils.WriteAttendanceCSV(&buf, rows); csvErr != nil {
			taskErr = fmt.Errorf("CSV generation failed: %w", csvErr)
			log.Printf("Worker %d: ERROR %v", id, taskErr)
		} else {
			savedPath, saveErr := ep.Processor.SaveExport(&buf)
			if saveErr != nil {
				taskErr = fmt.Errorf("export save failed: %w", saveErr)
				log.Printf("Worker %d: ERROR %v", id, taskErr)
			} else {
				filePathPtr = &savedPath
				log.Printf("Worker %d: Export job %d wrote %d rows to %s", id, job.JobID, len(rows), savedPath)
			}
		}
	}

	if dbErr := ep.Repo.SetResult(job.JobID, filePathPtr, taskErr); dbErr != nil {
		log.Printf("Worker %d: ERROR updating export job %d result: %v", id, job.JobID, dbErr)
	}
}

// QueueJob queues an export if one for the same day and session is not
// already pending
func (ep *ExportProcessor) QueueJob(job ExportJob) bool {
	pendingKey := fmt.Sprintf("%s:%s", job.Day, job.Session)

	ep.Mutex.Lock()
	if ep.Pending[pendingKey] {
		ep.Mutex.Unlock()
		return false
	}

	ep.Pending[pendingKey] = true
	ep.Mutex.Unlock()

	select {
	case ep.JobQueue <- job:
		log.Printf("Queued export job %d for %s", job.JobID, pendingKey)
		return true
	default:
		log.Printf("WARNING: Export job queue full. Failed to queue job %d for %s", job.JobID, pendingKey)
		ep.Mutex.Lock()
		delete(ep.Pending, pendingKey)
		ep.Mutex.Unlock()
		return false
	}
}

func (ep *ExportProcessor) Stop() {
	log.Println("Stopping export workers...")
	close(ep.StopChan)
	ep.Wg.Wait()
	log.Println("All export workers stopped")
}
