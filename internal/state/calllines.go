package state

import (
	"sync"
	"time"

	"github.com/X-CodesTech/qAudio-sub000/internal/types"
)

// LineCount is the number of fixed phone-call slots: 1-4 belong to studio A,
// 5-8 to studio B. All slots exist for the life of the process.
const LineCount = 8

// CallLineUpdate carries the fields a producer or talent console may change
// on a line. Nil fields are left untouched.
type CallLineUpdate struct {
	Status      *types.CallLineStatus
	PhoneNumber *string
	Contact     *string
	Notes       *string
	Duration    *int
	InputLevel  *int
	OutputLevel *int
}

// CallLineBank owns the 8 call-line slots.
type CallLineBank struct {
	mu    sync.RWMutex
	lines map[int]*types.CallLine
}

func NewCallLineBank() *CallLineBank {
	b := &CallLineBank{lines: make(map[int]*types.CallLine, LineCount)}
	for id := 1; id <= LineCount; id++ {
		studio := types.StudioA
		if id > LineCount/2 {
			studio = types.StudioB
		}
		b.lines[id] = &types.CallLine{
			ID:     id,
			Studio: studio,
			Status: types.LineInactive,
		}
	}
	return b
}

// Apply mutates a line. StartTime is maintained here: set on the transition
// into a live status, cleared when the line returns to inactive.
func (b *CallLineBank) Apply(id int, upd CallLineUpdate) (types.CallLine, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	line, ok := b.lines[id]
	if !ok {
		return types.CallLine{}, ErrUnknownLine
	}

	if upd.Status != nil {
		next := *upd.Status
		if !next.Valid() {
			return types.CallLine{}, ErrInvalidStatus
		}
		if next.Live() && line.StartTime == nil {
			now := time.Now()
			line.StartTime = &now
		}
		if next == types.LineInactive {
			line.StartTime = nil
			line.Duration = 0
			line.PhoneNumber = ""
			line.Contact = ""
			line.Notes = ""
		}
		line.Status = next
	}
	if upd.PhoneNumber != nil {
		line.PhoneNumber = *upd.PhoneNumber
	}
	if upd.Contact != nil {
		line.Contact = *upd.Contact
	}
	if upd.Notes != nil {
		line.Notes = *upd.Notes
	}
	if upd.Duration != nil && *upd.Duration >= 0 {
		line.Duration = *upd.Duration
	}
	if upd.InputLevel != nil {
		line.InputLevel = clampLevel(*upd.InputLevel)
	}
	if upd.OutputLevel != nil {
		line.OutputLevel = clampLevel(*upd.OutputLevel)
	}

	return *line, nil
}

func (b *CallLineBank) Line(id int) (types.CallLine, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	line, ok := b.lines[id]
	if !ok {
		return types.CallLine{}, ErrUnknownLine
	}
	return *line, nil
}

// All returns every line ordered by id.
func (b *CallLineBank) All() []types.CallLine {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]types.CallLine, 0, LineCount)
	for id := 1; id <= LineCount; id++ {
		out = append(out, *b.lines[id])
	}
	return out
}

func clampLevel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
