package manager

import (
	"strings"
	"sync"

	"dataclassification/entity"
)

// RecordFilter keeps the user and process lists used to narrow an export.
// Lookups are safe from concurrent workers.
type RecordFilter struct {
	users            map[string]struct{} // lowercased, DOMAIN\user or user
	excludeProcesses map[string]struct{} // lowercased substrings
	mutex            sync.RWMutex
}

func NewRecordFilter(users, excludeProcesses []string) *RecordFilter {
	rf := &RecordFilter{}
	rf.Reset(users, excludeProcesses)
	return rf
}

// Reset replaces both lists. An empty user list allows every user.
func (rf *RecordFilter) Reset(users, excludeProcesses []string) {
	newUsers := make(map[string]struct{}, len(users))
	for _, u := range users {
		if u = normalizeName(u); u != "" {
			newUsers[u] = struct{}{}
		}
	}

	newExcluded := make(map[string]struct{}, len(excludeProcesses))
	for _, p := range excludeProcesses {
		if p = normalizeName(p); p != "" {
			newExcluded[p] = struct{}{}
		}
	}

	rf.mutex.Lock()
	defer rf.mutex.Unlock()

	rf.users = newUsers
	rf.excludeProcesses = newExcluded
}

// IsUserAllowed matches "DOMAIN\user" either in full or by the user part,
// case-insensitively.
func (rf *RecordFilter) IsUserAllowed(userName string) bool {
	rf.mutex.RLock()
	defer rf.mutex.RUnlock()

	if len(rf.users) == 0 {
		return true
	}

	full := normalizeName(userName)
	if _, ok := rf.users[full]; ok {
		return true
	}
	if i := strings.LastIndexByte(full, '\\'); i >= 0 {
		_, ok := rf.users[full[i+1:]]
		return ok
	}
	return false
}

func (rf *RecordFilter) IsProcessExcluded(processName string) bool {
	rf.mutex.RLock()
	defer rf.mutex.RUnlock()

	p := normalizeName(processName)
	for entry := range rf.excludeProcesses {
		if strings.Contains(p, entry) {
			return true
		}
	}
	return false
}

// Allows reports whether r should be exported.
func (rf *RecordFilter) Allows(r entity.ActivityRecord) bool {
	return rf.IsUserAllowed(r.UserName) && !rf.IsProcessExcluded(r.ProcessName)
}

// Apply returns the allowed records in their original order.
func (rf *RecordFilter) Apply(records []entity.ActivityRecord) []entity.ActivityRecord {
	out := records[:0:0]
	for _, r := range records {
		if rf.Allows(r) {
			out = append(out, r)
		}
	}
	return out
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
