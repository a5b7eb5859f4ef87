package smclient

import (
	"net/url"
	"strconv"
)

// DefaultJobsLimit is the page size used by GetJobs when no limit is given.
const DefaultJobsLimit = 50

// ListOption tunes a GetJobs call.
type ListOption func(*listQuery)

type listQuery struct {
	limit     int
	hasLimit  bool
	before    string
	hasBefore bool
}

// Limit sets the page size. On SessionClient a zero limit drops the
// /limit suffix; on KeyClient it is sent as /limit/0.
func Limit(n int) ListOption {
	return func(q *listQuery) {
		q.limit = n
		q.hasLimit = true
	}
}

// NoLimit removes the limit segment (and with it any before segment).
func NoLimit() ListOption {
	return func(q *listQuery) {
		q.limit = 0
		q.hasLimit = false
	}
}

// Before asks for jobs older than the given job id.
func Before(jobID string) ListOption {
	return func(q *listQuery) {
		q.before = jobID
		q.hasBefore = true
	}
}

func newListQuery(opts []ListOption) listQuery {
	q := listQuery{limit: DefaultJobsLimit, hasLimit: true}
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

// sessionJobsPath composes the content-owner listing path. A zero limit
// suppresses the whole suffix, so a before id without a limit is dropped.
func sessionJobsPath(q listQuery) string {
	path := "/api/job"
	if q.hasLimit && q.limit != 0 {
		path += "/limit/" + strconv.Itoa(q.limit)
		if q.hasBefore && q.before != "" {
			path += "/before/" + url.PathEscape(q.before)
		}
	}
	return path
}

// keyJobsPath composes the backend listing path. Any present limit is
// sent, zero included, and a present before id follows it.
func keyJobsPath(q listQuery) string {
	path := "/internal/job"
	if q.hasLimit {
		path += "/limit/" + strconv.Itoa(q.limit)
		if q.hasBefore {
			path += "/before/" + url.PathEscape(q.before)
		}
	}
	return path
}
