package room

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

// RoomSnapshot is a lightweight, debug-only projection of a room's
// metadata. It deliberately omits quiz content (external, re-fetchable)
// and anything timer-derived (a saved timer deadline would be meaningless
// after a restart) — see DESIGN.md. Loading a snapshot is purely
// informational; rooms are never reconstructed from it; a restart always
// starts empty.
type RoomSnapshot struct {
	Code           string    `json:"code"`
	Status         string    `json:"status"`
	Phase          string    `json:"phase"`
	PlayerCount    int       `json:"playerCount"`
	CreatedAt      time.Time `json:"createdAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
}

type persistedSnapshot struct {
	Rooms   []RoomSnapshot `json:"rooms"`
	SavedAt time.Time      `json:"savedAt"`
	Version int            `json:"version"`
}

// PersistenceManager periodically writes a debug snapshot of every live
// room's metadata, and separately identifies rooms that have gone stale
// (no activity for longer than a configured age) for cleanup. Grounded on
// the upstream persistenceManager's Save/FindStaleRooms shape, narrowed
// from full state persistence to a metadata-only snapshot.
type PersistenceManager interface {
	Save(filename string, snapshots []RoomSnapshot) error
	FindStaleRooms(rooms []*Room, maxAge time.Duration) []string
}

type persistenceManager struct{}

// NewPersistenceManager constructs a PersistenceManager.
func NewPersistenceManager() PersistenceManager {
	return &persistenceManager{}
}

// Save writes snapshots to filename via a temp-file-then-rename, so a
// concurrent reader never observes a partially written file.
func (pm *persistenceManager) Save(filename string, snapshots []RoomSnapshot) error {
	pd := persistedSnapshot{Rooms: snapshots, SavedAt: time.Now(), Version: 1}

	data, err := json.MarshalIndent(pd, "", "  ")
	if err != nil {
		return err
	}

	tmp := filename + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, filename); err != nil {
		os.Remove(tmp)
		return err
	}
	log.Printf("room: wrote snapshot of %d rooms to %s", len(snapshots), filename)
	return nil
}

// FindStaleRooms returns the codes of rooms whose LastActivityAt predates
// the cutoff, for a cleanup sweep to delete.
func (pm *persistenceManager) FindStaleRooms(rooms []*Room, maxAge time.Duration) []string {
	cutoff := time.Now().Add(-maxAge)
	var stale []string
	for _, r := range rooms {
		if r.LastActivityAt.Before(cutoff) {
			stale = append(stale, r.Code)
		}
	}
	return stale
}

// Snapshot projects a room to its debug-only metadata view.
func Snapshot(r *Room) RoomSnapshot {
	return RoomSnapshot{
		Code:           r.Code,
		Status:         string(r.Status),
		Phase:          string(r.Phase),
		PlayerCount:    len(r.Players),
		CreatedAt:      r.CreatedAt,
		LastActivityAt: r.LastActivityAt,
	}
}

// StartSnapshotLoop periodically writes a debug snapshot of every live room
// to filename until stop is closed. A no-op if filename is empty.
func (s *Service) StartSnapshotLoop(filename string, interval time.Duration, stop <-chan struct{}) {
	if filename == "" {
		return
	}
	pm := NewPersistenceManager()
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				rooms := s.repo.All()
				snapshots := make([]RoomSnapshot, len(rooms))
				for i, r := range rooms {
					snapshots[i] = Snapshot(r)
				}
				if err := pm.Save(filename, snapshots); err != nil {
					log.Printf("room: snapshot save failed: %v", err)
				}
			}
		}
	}()
}

// StartStaleCleanupLoop periodically deletes rooms that have had no
// activity for longer than maxAge, cancelling their timers and manager
// bookkeeping the same way EndRoomSignal does.
func (s *Service) StartStaleCleanupLoop(maxAge, interval time.Duration, stop <-chan struct{}) {
	pm := NewPersistenceManager()
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				stale := pm.FindStaleRooms(s.repo.All(), maxAge)
				for _, code := range stale {
					log.Printf("room: cleaning up stale room %s", code)
					s.processSignals(code, []Signal{EndRoomSignal{}})
				}
			}
		}
	}()
}
