package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotboard/internal/models"
	"github.com/desertthunder/spotboard/internal/playback"
	"github.com/desertthunder/spotboard/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgItemsLoaded MsgKind = iota
	MsgFeaturesMerged
	MsgProgressUpdate
	MsgPlaybackChanged
	MsgPlaybackFailed
	MsgMutationDone
)

type itemsLoaded struct {
	view  ViewState
	seq   int
	items []any
	err   error
}

// itemsLoadedMsg is the constructor for [MsgItemsLoaded]. seq identifies the load so superseded results can be dropped.
func itemsLoadedMsg[T any](view ViewState, seq int, items []T, err error) Msg {
	boxed := make([]any, len(items))
	for i, it := range items {
		boxed[i] = it
	}
	return Msg{kind: MsgItemsLoaded, data: itemsLoaded{view: view, seq: seq, items: boxed, err: err}}
}

type featuresMerged struct {
	features models.FeatureSet
	err      error
}

// featuresMergedMsg is the constructor for [MsgFeaturesMerged]
func featuresMergedMsg(features models.FeatureSet, err error) Msg {
	return Msg{kind: MsgFeaturesMerged, data: featuresMerged{features: features, err: err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// playbackChangedMsg is the constructor for [MsgPlaybackChanged]
func playbackChangedMsg(state playback.State) Msg {
	return Msg{kind: MsgPlaybackChanged, data: state}
}

// playbackFailedMsg is the constructor for [MsgPlaybackFailed]
func playbackFailedMsg(err error) Msg {
	return Msg{kind: MsgPlaybackFailed, data: err}
}

type mutationDone struct {
	done   string
	failed string
	err    error
}

// mutationDoneMsg is the constructor for [MsgMutationDone]; done or failed is shown depending on err.
func mutationDoneMsg(done, failed string, err error) Msg {
	return Msg{kind: MsgMutationDone, data: mutationDone{done: done, failed: failed, err: err}}
}
