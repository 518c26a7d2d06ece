package shell

import (
	"fmt"
	"io"
	"sync"

	"github.com/kballard/go-shellquote"
	"github.com/jhmcstanton/quash-go/internal/quashlog"
	"github.com/sirupsen/logrus"
)

// Job is a backgrounded child group: the process id of its last stage and
// the label it is reported under (argv[0] of the command that was forked).
type Job struct {
	PID   int
	Label string

	done chan struct{}
	err  error
}

// JobTable is a bounded, dense sequence of Jobs. A job's position in the
// slice is its displayed id; ids shift left when a job is reaped, matching
// the original job_t array's compaction behavior without the fixed
// MAX_NUM_JOBS array size.
type JobTable struct {
	mu       sync.Mutex
	jobs     []*Job
	capacity int
	logger   *quashlog.Logger
}

// NewJobTable builds a table bounded to capacity entries. logger may be nil
// in tests; a nil logger simply skips telemetry.
func NewJobTable(capacity int, logger *quashlog.Logger) *JobTable {
	return &JobTable{capacity: capacity, logger: logger}
}

func (t *JobTable) logDebug(msg string, fields logrus.Fields) {
	if t.logger != nil {
		t.logger.Debug(msg, fields)
	}
}

func (t *JobTable) logInfo(msg string, fields logrus.Fields) {
	if t.logger != nil {
		t.logger.Info(msg, fields)
	}
}

// Add records a backgrounded child. wait is called in its own goroutine and
// should block until the child exits (typically cmd.Wait); its return
// value becomes the job's terminal error, surfaced the next time Poll
// reaps it. Add reports ok=false without starting the goroutine if the
// table is already at capacity, mirroring the original's fixed-size job
// array dropping jobs it has no room for rather than blocking the shell.
func (t *JobTable) Add(pid int, label string, wait func() error) (id int, ok bool) {
	t.mu.Lock()
	if len(t.jobs) >= t.capacity {
		t.mu.Unlock()
		t.logInfo("job table full, dropping background job", logrus.Fields{"pid": pid, "label": label})
		return 0, false
	}

	job := &Job{PID: pid, Label: label, done: make(chan struct{})}
	t.jobs = append(t.jobs, job)
	id = len(t.jobs) - 1
	t.mu.Unlock()

	t.logInfo("job logged", logrus.Fields{"id": id, "pid": pid, "label": label})

	go func() {
		job.err = wait()
		close(job.done)
	}()

	return id, true
}

// Poll performs one non-blocking sweep of the table, reaping any job whose
// wait goroutine has finished and returning a human-readable finish line
// for each. It compacts the slice so ids stay dense, the same contract the
// original's array-shifting compaction provided.
func (t *JobTable) Poll() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var lines []string
	remaining := t.jobs[:0]

	for i, job := range t.jobs {
		select {
		case <-job.done:
			lines = append(lines, fmt.Sprintf("[%d] %d finished %s", i, job.PID, job.Label))
			status := "ok"
			if job.err != nil {
				status = job.err.Error()
			}
			t.logInfo("job reaped", logrus.Fields{"id": i, "pid": job.PID, "status": status})
		default:
			remaining = append(remaining, job)
		}
	}

	t.jobs = remaining
	return lines
}

// Print writes "[id] pid label" for every currently tracked job, the
// "jobs" built-in's entire implementation.
func (t *JobTable) Print(w io.Writer) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, job := range t.jobs {
		fmt.Fprintf(w, "[%d] %d %s\n", i, job.PID, job.Label)
	}
}

// renderArgv joins argv back into a single displayable string, using
// shellquote so arguments containing spaces round-trip legibly instead of
// looking like extra words. Job labels do not use it: a job's label is the
// bare argv[0].
func renderArgv(argv []string) string {
	if len(argv) == 0 {
		return ""
	}
	return shellquote.Join(argv...)
}
