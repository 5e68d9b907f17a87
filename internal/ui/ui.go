package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/spotboard/internal/formatter"
	"github.com/desertthunder/spotboard/internal/models"
	"github.com/desertthunder/spotboard/internal/playback"
	"github.com/desertthunder/spotboard/internal/services"
	"github.com/desertthunder/spotboard/internal/shared"
	"github.com/desertthunder/spotboard/internal/tasks"
)

// ViewState represents the current tab in the TUI.
type ViewState int

const (
	TopTracksView ViewState = iota
	TopArtistsView
	TopAlbumsView
	SearchTracksView
	SearchPlaylistsView
	viewCount
)

func (v ViewState) String() string {
	switch v {
	case TopTracksView:
		return "Top Tracks"
	case TopArtistsView:
		return "Top Artists"
	case TopAlbumsView:
		return "Top Albums"
	case SearchTracksView:
		return "Search Tracks"
	case SearchPlaylistsView:
		return "Search Playlists"
	default:
		return ""
	}
}

func (v ViewState) isSearch() bool {
	return v == SearchTracksView || v == SearchPlaylistsView
}

// ListLimit is how many items the top and search views request.
const ListLimit = 50

const featurePanelWidth = 36

// pane is the per-tab state.
type pane struct {
	list    list.Model
	seq     int
	loaded  bool
	loading bool
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	dashboard *tasks.Dashboard
	player    *playback.Coordinator
	width     int
	height    int
	panes     [viewCount]*pane
	search    textinput.Model
	spinner   spinner.Model
	features  models.FeatureSet

	progressChan chan tasks.ProgressUpdate
	albumsDone   chan Msg
	progress     tasks.ProgressUpdate

	playbackChan chan playback.State
	playing      playback.State

	unauthenticated bool
	status          string
	help            help.Model
	keys            keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, dashboard *tasks.Dashboard, player *playback.Coordinator) *Model {
	m := &Model{
		ctx:          ctx,
		view:         TopTracksView,
		dashboard:    dashboard,
		player:       player,
		features:     models.FeatureSet{},
		playbackChan: make(chan playback.State, 16),
		help:         help.New(),
		keys:         newKeyMap(),
	}

	for v := range viewCount {
		l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
		l.SetShowTitle(false)
		l.SetShowHelp(false)
		l.SetShowStatusBar(false)
		l.SetFilteringEnabled(false)
		l.DisableQuitKeybindings()
		m.panes[v] = &pane{list: l}
	}

	m.search = textinput.New()
	m.search.Placeholder = "artist, track or playlist"
	m.search.Prompt = "/ "
	m.search.CharLimit = 100

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	player.OnChange(func(s playback.State) {
		select {
		case m.playbackChan <- s:
		default:
		}
	})

	return m
}

// Init starts the spinner, the playback watcher and the first view's load.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForPlayback(), m.load(m.view))
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.search.Focused() {
			return m.handleSearchKeys(msg)
		}
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgItemsLoaded:
		return m.handleItemsLoaded(msg.data.(itemsLoaded))

	case MsgFeaturesMerged:
		data := msg.data.(featuresMerged)
		if shared.IsUnauthenticated(data.err) {
			m.unauthenticated = true
		}
		m.absorbFeatures(data.features)
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		if m.albumsDone == nil {
			return m, nil
		}
		return m, m.waitForProgress()

	case MsgPlaybackChanged:
		m.playing = m.player.State()
		m.markPlaying()
		return m, m.waitForPlayback()

	case MsgPlaybackFailed:
		m.status = styles.warn.Render(fmt.Sprintf("Preview failed: %v", msg.data.(error)))
		return m, nil

	case MsgMutationDone:
		data := msg.data.(mutationDone)
		if data.err == nil {
			m.status = styles.ok.Render("✓ " + data.done)
			return m, nil
		}
		if shared.IsUnauthenticated(data.err) {
			m.unauthenticated = true
		}
		m.status = styles.err.Render(fmt.Sprintf("✗ %s: %v", data.failed, data.err))
		return m, nil
	}

	return m, nil
}

func (m *Model) handleItemsLoaded(data itemsLoaded) (tea.Model, tea.Cmd) {
	p := m.panes[data.view]
	if data.seq != p.seq {
		return m, nil
	}

	if data.view == TopAlbumsView {
		m.progressChan = nil
		m.albumsDone = nil
	}

	p.loading = false
	if data.err != nil {
		if shared.IsUnauthenticated(data.err) {
			m.unauthenticated = true
		} else {
			m.status = styles.err.Render(fmt.Sprintf("Error: %v", data.err))
		}
		return m, nil
	}

	p.loaded = true
	m.unauthenticated = false

	items := make([]list.Item, 0, len(data.items))
	var tracks []models.Track
	for _, it := range data.items {
		switch v := it.(type) {
		case models.Track:
			tracks = append(tracks, v)
			items = append(items, trackItem{track: v})
		case models.Artist:
			items = append(items, artistItem{artist: v})
		case models.AlbumScore:
			items = append(items, albumItem{score: v, rank: len(items) + 1})
		case models.Playlist:
			items = append(items, playlistItem{playlist: v})
		}
	}
	cmd := p.list.SetItems(items)
	p.list.Select(0)
	m.markPlaying()

	if len(tracks) > 0 {
		return m, tea.Batch(cmd, m.mergeFeatures(tracks))
	}
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.search.Blur()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.search.Blur()
		if strings.TrimSpace(m.search.Value()) == "" {
			return m, nil
		}
		m.panes[m.view].loaded = false
		return m, m.load(m.view)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.next):
		return m.switchView((m.view + 1) % viewCount)

	case key.Matches(msg, m.keys.prev):
		return m.switchView((m.view + viewCount - 1) % viewCount)

	case key.Matches(msg, m.keys.search):
		if !m.view.isSearch() {
			m.view = SearchTracksView
		}
		m.status = ""
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.play):
		return m, m.playSelected()

	case key.Matches(msg, m.keys.like):
		return m, m.likeSelected()

	case key.Matches(msg, m.keys.follow):
		return m, m.followSelected()

	case key.Matches(msg, m.keys.timeRange):
		return m.cycleTimeRange()
	}

	return m.updateList(msg)
}

func (m *Model) switchView(v ViewState) (tea.Model, tea.Cmd) {
	m.view = v
	m.status = ""
	if p := m.panes[v]; p.loaded || p.loading || v.isSearch() {
		return m, nil
	}
	return m, m.load(v)
}

func (m *Model) cycleTimeRange() (tea.Model, tea.Cmd) {
	next := map[services.TimeRange]services.TimeRange{
		services.ShortTerm:  services.MediumTerm,
		services.MediumTerm: services.LongTerm,
		services.LongTerm:   services.ShortTerm,
	}[m.dashboard.TimeRange()]
	m.dashboard = m.dashboard.WithTimeRange(next)

	for _, v := range []ViewState{TopTracksView, TopArtistsView, TopAlbumsView} {
		m.panes[v].loaded = false
	}
	m.status = fmt.Sprintf("Time range: %s", next)

	if m.view.isSearch() {
		return m, nil
	}
	return m, m.load(m.view)
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	p := m.panes[m.view]
	p.list, cmd = p.list.Update(msg)
	return m, cmd
}

func (m *Model) resize() {
	w, h := m.listSize()
	for _, p := range m.panes {
		p.list.SetSize(w, h)
	}
}

func (m *Model) listSize() (int, int) {
	w := m.width - 4
	if m.showFeatures() {
		w -= featurePanelWidth + 2
	}
	return max(w, 20), max(m.height-10, 5)
}

func (m *Model) showFeatures() bool {
	return m.width >= 90
}

// load starts fetching the items of view v; older in-flight loads for v are superseded.
func (m *Model) load(v ViewState) tea.Cmd {
	p := m.panes[v]
	p.seq++
	p.loading = true
	seq := p.seq
	d := m.dashboard
	ctx := m.ctx
	query := m.search.Value()

	switch v {
	case TopTracksView:
		return func() tea.Msg {
			tracks, err := d.TopTracks(ctx, ListLimit)
			return itemsLoadedMsg(v, seq, tracks, err)
		}
	case TopArtistsView:
		return func() tea.Msg {
			artists, err := d.TopArtists(ctx, ListLimit)
			return itemsLoadedMsg(v, seq, artists, err)
		}
	case TopAlbumsView:
		return m.loadAlbums(seq)
	case SearchTracksView:
		return func() tea.Msg {
			tracks, err := d.SearchTracks(ctx, query, ListLimit)
			return itemsLoadedMsg(v, seq, tracks, err)
		}
	case SearchPlaylistsView:
		return func() tea.Msg {
			playlists, err := d.SearchPlaylists(ctx, query, ListLimit)
			return itemsLoadedMsg(v, seq, playlists, err)
		}
	}

	p.loading = false
	return nil
}

func (m *Model) loadAlbums(seq int) tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan Msg, 1)
	m.progressChan = progress
	m.albumsDone = done
	m.progress = tasks.ProgressUpdate{}

	d := m.dashboard
	ctx := m.ctx
	go func() {
		scores, err := d.TopAlbums(ctx, progress)
		done <- itemsLoadedMsg(TopAlbumsView, seq, scores, err)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.albumsDone
	return func() tea.Msg {
		select {
		case update := <-progress:
			return progressUpdateMsg(update)
		case msg := <-done:
			return msg
		}
	}
}

func (m *Model) waitForPlayback() tea.Cmd {
	ch := m.playbackChan
	return func() tea.Msg {
		return playbackChangedMsg(<-ch)
	}
}

func (m *Model) mergeFeatures(tracks []models.Track) tea.Cmd {
	d := m.dashboard
	ctx := m.ctx
	existing := m.features
	return func() tea.Msg {
		features, err := d.Features(ctx, existing, tracks, nil)
		return featuresMergedMsg(features, err)
	}
}

// absorbFeatures unions fetched into the live set. Merges started from the same snapshot
// may finish in any order, so fetched never replaces the set.
func (m *Model) absorbFeatures(fetched models.FeatureSet) {
	if len(fetched) == 0 {
		return
	}
	merged := m.features.Clone()
	for id, f := range fetched {
		merged[id] = f
	}
	m.features = merged
}

func (m *Model) selected() list.Item {
	return m.panes[m.view].list.SelectedItem()
}

func (m *Model) playSelected() tea.Cmd {
	item, ok := m.selected().(playable)
	if !ok {
		return nil
	}

	player := m.player
	ctx := m.ctx
	id := item.id()
	resolve := item.resolver(m.dashboard.Catalog())
	return func() tea.Msg {
		if err := player.Play(ctx, id, resolve); err != nil {
			return playbackFailedMsg(err)
		}
		return nil
	}
}

func (m *Model) likeSelected() tea.Cmd {
	item, ok := m.selected().(trackItem)
	if !ok {
		return nil
	}

	d := m.dashboard
	ctx := m.ctx
	track := item.track
	return func() tea.Msg {
		err := d.LikeTrack(ctx, track.ID)
		return mutationDoneMsg("Liked "+track.Name, "Could not like "+track.Name, err)
	}
}

func (m *Model) followSelected() tea.Cmd {
	item, ok := m.selected().(playlistItem)
	if !ok {
		return nil
	}

	d := m.dashboard
	ctx := m.ctx
	playlist := item.playlist
	return func() tea.Msg {
		err := d.FollowPlaylist(ctx, playlist.ID)
		return mutationDoneMsg("Followed "+playlist.Name, "Could not follow "+playlist.Name, err)
	}
}

// markPlaying flags the item matching the coordinator's target in every pane.
func (m *Model) markPlaying() {
	target := ""
	if m.playing.Status != playback.Idle {
		target = m.playing.ID
	}

	for _, p := range m.panes {
		items := p.list.Items()
		changed := false
		for i, it := range items {
			pl, ok := it.(playable)
			if !ok {
				continue
			}
			isTarget := target != "" && pl.id() == target
			if isTarget != isMarked(it) {
				items[i] = pl.withPlaying(isTarget)
				changed = true
			}
		}
		if changed {
			p.list.SetItems(items)
		}
	}
}

func isMarked(it list.Item) bool {
	switch v := it.(type) {
	case trackItem:
		return v.playing
	case artistItem:
		return v.playing
	case albumItem:
		return v.playing
	case playlistItem:
		return v.playing
	}
	return false
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	if m.view.isSearch() {
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderBody())
	b.WriteString("\n\n")

	if line := m.renderStatus(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(m.help.ShortHelpView(m.helpKeys()))

	return b.String()
}

func (m *Model) renderTabs() string {
	tabs := make([]string, 0, viewCount)
	for v := range viewCount {
		if v == m.view {
			tabs = append(tabs, styles.activeTab.Render(v.String()))
		} else {
			tabs = append(tabs, styles.tab.Render(v.String()))
		}
	}
	title := styles.title.Render("spotboard") + "  " + styles.help.Render(string(m.dashboard.TimeRange()))
	return title + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderBody() string {
	p := m.panes[m.view]

	switch {
	case m.unauthenticated:
		return styles.warn.Render("Please log in: run `spotboard auth login`, then restart the dashboard.")
	case p.loading:
		msg := "Loading..."
		if m.view == TopAlbumsView && m.progress.Message != "" {
			msg = fmt.Sprintf("%s (%d/%d)", m.progress.Message, m.progress.Step, m.progress.Total)
		}
		return m.spinner.View() + " " + msg
	case !p.loaded && m.view.isSearch():
		return styles.help.Render("Press / to search.")
	case !p.loaded:
		return ""
	case len(p.list.Items()) == 0:
		return styles.help.Render("Nothing found.")
	}

	body := p.list.View()
	if item, ok := m.selected().(trackItem); ok && m.showFeatures() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderFeatures(item.track))
	}
	return body
}

func (m *Model) renderFeatures(track models.Track) string {
	f, ok := m.features.Get(track.ID)
	if !ok {
		return styles.panel.Width(featurePanelWidth).Render(styles.help.Render("No audio features"))
	}
	return styles.panel.Width(featurePanelWidth).Render(formatter.FeatureBars(f, 10))
}

func (m *Model) renderStatus() string {
	var parts []string
	if m.playing.Status != playback.Idle {
		name := m.titleFor(m.playing.ID)
		if m.playing.Status == playback.Pending {
			parts = append(parts, styles.help.Render("… loading preview of "+name))
		} else {
			parts = append(parts, styles.ok.Render("▶ "+name))
		}
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return strings.Join(parts, "  ")
}

func (m *Model) titleFor(id string) string {
	for _, p := range m.panes {
		for _, it := range p.list.Items() {
			if pl, ok := it.(playable); ok && pl.id() == id {
				return pl.FilterValue()
			}
		}
	}
	return id
}

func (m *Model) helpKeys() []key.Binding {
	if m.search.Focused() {
		return []key.Binding{m.keys.enter, m.keys.back}
	}

	keys := []key.Binding{m.keys.next, m.keys.search, m.keys.play}
	switch m.view {
	case TopTracksView, SearchTracksView:
		keys = append(keys, m.keys.like)
	case SearchPlaylistsView:
		keys = append(keys, m.keys.follow)
	}
	if !m.view.isSearch() {
		keys = append(keys, m.keys.timeRange)
	}
	return append(keys, m.keys.quit)
}
