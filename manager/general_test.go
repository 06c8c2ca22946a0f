package manager

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"dataclassification/entity"
)

func TestIsUserAllowed(t *testing.T) {
	rf := NewRecordFilter([]string{`SEBRAE\Maria`, "joao"}, nil)

	assert.True(t, rf.IsUserAllowed(`sebrae\maria`))
	assert.True(t, rf.IsUserAllowed(`SEBRAE\JOAO`), "bare user name matches any domain")
	assert.True(t, rf.IsUserAllowed("joao"))
	assert.False(t, rf.IsUserAllowed(`OTHER\maria`))
	assert.False(t, rf.IsUserAllowed(""))

	rf.Reset([]string{"maria"}, nil)
	assert.False(t, rf.IsUserAllowed(`SEBRAE\joao`))
	assert.True(t, rf.IsUserAllowed(`SEBRAE\Maria`))
}

func TestEmptyUserListAllowsEveryone(t *testing.T) {
	rf := NewRecordFilter(nil, nil)
	assert.True(t, rf.IsUserAllowed(`ANY\one`))
	assert.True(t, rf.IsUserAllowed(""))

	rf.Reset([]string{" ", ""}, nil)
	assert.True(t, rf.IsUserAllowed(`ANY\one`), "blank names are ignored")

	rf.Reset([]string{"ana"}, nil)
	assert.False(t, rf.IsUserAllowed(`ANY\one`))
}

func TestApply(t *testing.T) {
	rf := NewRecordFilter(nil, []string{"LockApp.exe", "idle"})

	records := []entity.ActivityRecord{
		{SliceID: 1, ProcessName: "chrome.exe"},
		{SliceID: 2, ProcessName: "LockApp.exe"},
		{SliceID: 3, ProcessName: "System Idle Process"},
		{SliceID: 4, ProcessName: "WINWORD.EXE"},
	}

	out := rf.Apply(records)

	assert.Len(t, out, 2)
	assert.Equal(t, int64(1), out[0].SliceID)
	assert.Equal(t, int64(4), out[1].SliceID)
	assert.Equal(t, int64(2), records[1].SliceID, "input is left untouched")
}

func TestConcurrentAccess(t *testing.T) {
	rf := NewRecordFilter([]string{"maria"}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			rf.Allows(entity.ActivityRecord{UserName: `SEBRAE\maria`, ProcessName: "x.exe"})
		}()
		go func() {
			defer wg.Done()
			rf.Reset([]string{"maria"}, []string{"y.exe"})
		}()
	}
	wg.Wait()

	assert.True(t, rf.IsProcessExcluded("Y.EXE"))
}
