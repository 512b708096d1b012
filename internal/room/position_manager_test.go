package room

import (
	"testing"
	"time"

	"github.com/maz/hunter/internal/gridutil"
)

func TestPositionMgr_ThrottleRejectsRapidUpdates(t *testing.T) {
	mgr := NewPositionMgr(50 * time.Millisecond)
	r := NewRoom("MAZAAAA", 4)
	grid, err := gridutil.NewGrid(20, 20, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, ok := mgr.UpdatePosition(r, "p1", Position{Cell: gridutil.Cell{Row: 1, Col: 1}}, grid)
	if !ok || first == nil {
		t.Fatal("expected the first update to be accepted")
	}

	_, ok = mgr.UpdatePosition(r, "p1", Position{Cell: gridutil.Cell{Row: 2, Col: 1}}, grid)
	if ok {
		t.Error("expected the immediately-following update to be throttled")
	}

	time.Sleep(60 * time.Millisecond)
	_, ok = mgr.UpdatePosition(r, "p1", Position{Cell: gridutil.Cell{Row: 2, Col: 1}}, grid)
	if !ok {
		t.Error("expected an update accepted once the throttle interval elapses")
	}
}

func TestPositionMgr_PostRespawnGraceThrottles(t *testing.T) {
	mgr := NewPositionMgr(0)
	r := NewRoom("MAZAAAA", 4)
	grid, err := gridutil.NewGrid(20, 20, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mgr.SetPlayerPosition(r, "p1", gridutil.Cell{Row: 5, Col: 5}, grid, false)

	if !mgr.IsThrottled("p1") {
		t.Error("expected updates throttled during the post-respawn grace window")
	}
}

func TestPositionMgr_UpdatePositionClampsVerticalOnly(t *testing.T) {
	mgr := NewPositionMgr(0)
	r := NewRoom("MAZAAAA", 4)
	grid, err := gridutil.NewGrid(10, 10, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := mgr.UpdatePosition(r, "p1", Position{Cell: gridutil.Cell{Row: -3, Col: 99}}, grid)
	if !ok {
		t.Fatal("expected update accepted")
	}
	if got.Cell.Row != 0 {
		t.Errorf("expected vertical axis clamped to 0, got %d", got.Cell.Row)
	}
	if got.Cell.Col != 99 {
		t.Errorf("expected horizontal axis passed through unclamped, got %d", got.Cell.Col)
	}
}

func TestPositionMgr_PathCellsShortCircuitsOnTeleport(t *testing.T) {
	mgr := NewPositionMgr(0)
	old := Position{Cell: gridutil.Cell{Row: 0, Col: 0}}
	new := Position{Cell: gridutil.Cell{Row: 9, Col: 9}, WasTeleport: true}

	path := mgr.PathCells(old, new)
	if len(path) != 1 || path[0] != new.Cell {
		t.Errorf("expected teleport path to contain only the destination cell, got %v", path)
	}
}

func TestPositionMgr_PathCellsWalksBresenhamLine(t *testing.T) {
	mgr := NewPositionMgr(0)
	old := Position{Cell: gridutil.Cell{Row: 0, Col: 0}}
	new := Position{Cell: gridutil.Cell{Row: 3, Col: 0}}

	path := mgr.PathCells(old, new)
	if len(path) < 2 {
		t.Errorf("expected a multi-cell path for a non-teleport move, got %v", path)
	}
}

func TestPositionMgr_ForgetClearsBookkeeping(t *testing.T) {
	mgr := NewPositionMgr(time.Minute)
	r := NewRoom("MAZAAAA", 4)
	grid, err := gridutil.NewGrid(10, 10, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mgr.UpdatePosition(r, "p1", Position{Cell: gridutil.Cell{Row: 1, Col: 1}}, grid)

	mgr.Forget("p1")

	if mgr.IsThrottled("p1") {
		t.Error("expected throttle state cleared after Forget")
	}
}
