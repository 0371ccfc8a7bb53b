package views

import (
	"context"
	"errors"
	"sync"
	"testing"

	"cinefinder/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type waitRunner struct {
	wg sync.WaitGroup
}

func (r *waitRunner) Go(parent context.Context, _ string, fn func(ctx context.Context)) bool {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn(parent)
	}()
	return true
}

func (r *waitRunner) Wait() { r.wg.Wait() }

type stoppedRunner struct{}

func (stoppedRunner) Go(context.Context, string, func(ctx context.Context)) bool { return false }

type fixture struct {
	metadata    *MockMetadataSource
	interpreter *MockQueryInterpreter
	recorder    *MockSearchRecorder
	runner      *waitRunner
	orch        *Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		metadata:    NewMockMetadataSource(ctrl),
		interpreter: NewMockQueryInterpreter(ctrl),
		recorder:    NewMockSearchRecorder(ctrl),
		runner:      &waitRunner{},
	}
	f.orch = NewOrchestrator(f.metadata, f.interpreter, WithRecorder(f.recorder), WithRunner(f.runner))
	return f
}

func showDetail(id int, seasonNumbers ...int) *models.MediaDetail {
	show := &models.ShowFacts{NumberOfSeasons: len(seasonNumbers)}
	for _, n := range seasonNumbers {
		show.Seasons = append(show.Seasons, models.SeasonSummary{ID: id*100 + n, SeasonNumber: n})
	}
	return &models.MediaDetail{ID: id, MediaType: models.MediaTypeTV, Title: "Serie", Show: show}
}

func movieDetail(id int, title string) *models.MediaDetail {
	return &models.MediaDetail{ID: id, MediaType: models.MediaTypeMovie, Title: title, Movie: &models.MovieFacts{}}
}

func TestNewOrchestrator_StartsOnHome(t *testing.T) {
	o := NewOrchestrator(nil, nil)
	state := o.Snapshot()

	assert.Equal(t, ViewHome, state.View)
	assert.False(t, state.Searching)
	assert.True(t, o.HomePending())
}

func TestEnterHome_LoadsSections(t *testing.T) {
	f := newFixture(t)
	sections := []models.HomeSection{
		{Title: "Películas Populares", Items: []models.MediaSummary{{ID: 1, MediaType: models.MediaTypeMovie, Title: "A", PosterPath: "/a.jpg"}}},
	}
	f.metadata.EXPECT().HomeSections(gomock.Any()).Return(sections, nil)

	require.NoError(t, f.orch.EnterHome(context.Background()))

	state := f.orch.Snapshot()
	assert.Equal(t, sections, state.Sections)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
	assert.False(t, f.orch.HomePending())
}

func TestEnterHome_FailureShowsMessage(t *testing.T) {
	f := newFixture(t)
	f.metadata.EXPECT().HomeSections(gomock.Any()).Return(nil, errors.New("error fetching from TMDB: Internal Server Error"))

	err := f.orch.EnterHome(context.Background())
	require.Error(t, err)

	state := f.orch.Snapshot()
	assert.Equal(t, HomeLoadErrorMessage, state.Error)
	assert.Empty(t, state.Sections)
	assert.False(t, state.Loading)
}

func TestSearch_BlankQueryIssuesNoCalls(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.orch.Search(context.Background(), "   "))

	state := f.orch.Snapshot()
	assert.False(t, state.Searching)
	assert.Equal(t, "   ", state.Query)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Results)
}

func TestSearch_ShowsResults(t *testing.T) {
	f := newFixture(t)
	results := []models.MediaSummary{
		{ID: 603, MediaType: models.MediaTypeMovie, Title: "Matrix", PosterPath: "/m.jpg"},
	}
	f.interpreter.EXPECT().InterpretQuery(gomock.Any(), "la peli de keanu en la simulación").Return("Matrix", nil)
	f.metadata.EXPECT().SearchMulti(gomock.Any(), "Matrix").Return(results, nil)
	f.recorder.EXPECT().Create(gomock.Any()).DoAndReturn(func(event *models.SearchEvent) error {
		assert.Equal(t, "la peli de keanu en la simulación", event.Query)
		assert.Equal(t, "Matrix", event.Keyword)
		assert.Equal(t, 1, event.ResultCount)
		assert.Empty(t, event.Error)
		return nil
	})

	require.NoError(t, f.orch.Search(context.Background(), "  la peli de keanu en la simulación "))

	state := f.orch.Snapshot()
	assert.True(t, state.Searching)
	assert.Equal(t, "Matrix", state.Keyword)
	assert.Equal(t, results, state.Results)
	assert.Empty(t, state.Notice)
	assert.False(t, state.Loading)
}

func TestSearch_NoResultsSetsNotice(t *testing.T) {
	f := newFixture(t)
	f.interpreter.EXPECT().InterpretQuery(gomock.Any(), "zzzz").Return("zzzz", nil)
	f.metadata.EXPECT().SearchMulti(gomock.Any(), "zzzz").Return([]models.MediaSummary{}, nil)
	f.recorder.EXPECT().Create(gomock.Any()).Return(nil)

	require.NoError(t, f.orch.Search(context.Background(), "zzzz"))

	state := f.orch.Snapshot()
	assert.True(t, state.Searching)
	assert.Empty(t, state.Results)
	assert.Equal(t, NoResultsMessage, state.Notice)
	assert.Empty(t, state.Error)
}

func TestSearch_InterpreterFailureSkipsSearch(t *testing.T) {
	f := newFixture(t)
	failure := errors.New("no se pudieron generar términos de búsqueda")
	f.interpreter.EXPECT().InterpretQuery(gomock.Any(), "algo").Return("", failure)
	f.recorder.EXPECT().Create(gomock.Any()).DoAndReturn(func(event *models.SearchEvent) error {
		assert.True(t, event.Failed())
		assert.Empty(t, event.Keyword)
		return nil
	})

	err := f.orch.Search(context.Background(), "algo")
	require.ErrorIs(t, err, failure)

	state := f.orch.Snapshot()
	assert.Equal(t, "Error: no se pudieron generar términos de búsqueda", state.Error)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Results)
}

func TestSearch_RecorderFailureIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.interpreter.EXPECT().InterpretQuery(gomock.Any(), "x").Return("x", nil)
	f.metadata.EXPECT().SearchMulti(gomock.Any(), "x").Return(nil, nil)
	f.recorder.EXPECT().Create(gomock.Any()).Return(errors.New("disk full"))

	assert.NoError(t, f.orch.Search(context.Background(), "x"))
}

func TestSelect_MovieShowsDetailsWithoutSeasons(t *testing.T) {
	f := newFixture(t)
	f.metadata.EXPECT().Detail(gomock.Any(), 550, models.MediaTypeMovie).Return(movieDetail(550, "El club de la lucha"), nil)

	require.NoError(t, f.orch.Select(context.Background(), 550, models.MediaTypeMovie))
	f.runner.Wait()

	state := f.orch.Snapshot()
	assert.Equal(t, ViewDetails, state.View)
	require.NotNil(t, state.Detail)
	assert.Equal(t, "El club de la lucha", state.Detail.Title)
	assert.False(t, state.SeasonsLoading)
	assert.True(t, state.ScrollTop)
	assert.Empty(t, state.Seasons)
}

func TestSelect_ShowFetchesSeasonsSkippingSpecials(t *testing.T) {
	f := newFixture(t)
	f.metadata.EXPECT().Detail(gomock.Any(), 42, models.MediaTypeTV).Return(showDetail(42, 0, 1, 2), nil)
	f.metadata.EXPECT().Season(gomock.Any(), 42, 1).Return(&models.SeasonDetail{SeasonNumber: 1, Name: "Temporada 1"}, nil).Times(1)
	f.metadata.EXPECT().Season(gomock.Any(), 42, 2).Return(&models.SeasonDetail{SeasonNumber: 2, Name: "Temporada 2"}, nil).Times(1)

	require.NoError(t, f.orch.Select(context.Background(), 42, models.MediaTypeTV))
	f.runner.Wait()

	state := f.orch.Snapshot()
	assert.False(t, state.SeasonsLoading)
	require.Len(t, state.Seasons, 2)
	assert.Equal(t, 1, state.Seasons[0].SeasonNumber)
	assert.Equal(t, 2, state.Seasons[1].SeasonNumber)
	assert.Empty(t, state.Error)
}

func TestSelect_SeasonFailureIsNotShown(t *testing.T) {
	f := newFixture(t)
	f.metadata.EXPECT().Detail(gomock.Any(), 42, models.MediaTypeTV).Return(showDetail(42, 1, 2), nil)
	f.metadata.EXPECT().Season(gomock.Any(), 42, 1).Return(nil, errors.New("error fetching from TMDB: Not Found"))
	f.metadata.EXPECT().Season(gomock.Any(), 42, 2).Return(&models.SeasonDetail{SeasonNumber: 2}, nil).AnyTimes()

	require.NoError(t, f.orch.Select(context.Background(), 42, models.MediaTypeTV))
	f.runner.Wait()

	state := f.orch.Snapshot()
	assert.Equal(t, ViewDetails, state.View)
	assert.NotNil(t, state.Detail)
	assert.False(t, state.SeasonsLoading)
	assert.Empty(t, state.Seasons)
	assert.Empty(t, state.Error)
}

func TestSelect_SeasonsOutliveRequestContext(t *testing.T) {
	f := newFixture(t)
	f.metadata.EXPECT().Detail(gomock.Any(), 7, models.MediaTypeTV).Return(showDetail(7, 1), nil)
	f.metadata.EXPECT().Season(gomock.Any(), 7, 1).DoAndReturn(func(ctx context.Context, _, _ int) (*models.SeasonDetail, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return &models.SeasonDetail{SeasonNumber: 1}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, f.orch.Select(ctx, 7, models.MediaTypeTV))
	cancel()
	f.runner.Wait()

	assert.Len(t, f.orch.Snapshot().Seasons, 1)
}

func TestSelect_FailureKeepsCurrentView(t *testing.T) {
	f := newFixture(t)
	f.metadata.EXPECT().Detail(gomock.Any(), 9, models.MediaTypeMovie).Return(nil, errors.New("error fetching from TMDB: Not Found"))

	err := f.orch.Select(context.Background(), 9, models.MediaTypeMovie)
	require.Error(t, err)

	state := f.orch.Snapshot()
	assert.Equal(t, ViewHome, state.View)
	assert.Nil(t, state.Detail)
	assert.Equal(t, "Error: error fetching from TMDB: Not Found", state.Error)
	assert.False(t, state.Loading)
}

func TestSelect_LaterSelectionWins(t *testing.T) {
	f := newFixture(t)
	started := make(chan struct{})

	f.metadata.EXPECT().Detail(gomock.Any(), 1, models.MediaTypeMovie).DoAndReturn(
		func(ctx context.Context, id int, _ models.MediaType) (*models.MediaDetail, error) {
			close(started)
			<-ctx.Done()
			return movieDetail(id, "Primera"), nil
		})
	f.metadata.EXPECT().Detail(gomock.Any(), 2, models.MediaTypeMovie).Return(movieDetail(2, "Segunda"), nil)

	firstErr := make(chan error, 1)
	go func() {
		firstErr <- f.orch.Select(context.Background(), 1, models.MediaTypeMovie)
	}()
	<-started

	require.NoError(t, f.orch.Select(context.Background(), 2, models.MediaTypeMovie))
	assert.ErrorIs(t, <-firstErr, ErrSuperseded)

	state := f.orch.Snapshot()
	require.NotNil(t, state.Detail)
	assert.Equal(t, "Segunda", state.Detail.Title)
	assert.False(t, state.Loading)
}

func TestSelect_RunnerStoppedClearsSeasonsLoading(t *testing.T) {
	ctrl := gomock.NewController(t)
	metadata := NewMockMetadataSource(ctrl)
	metadata.EXPECT().Detail(gomock.Any(), 3, models.MediaTypeTV).Return(showDetail(3, 1), nil)

	o := NewOrchestrator(metadata, NewMockQueryInterpreter(ctrl), WithRunner(stoppedRunner{}))
	require.NoError(t, o.Select(context.Background(), 3, models.MediaTypeTV))

	state := o.Snapshot()
	assert.Equal(t, ViewDetails, state.View)
	assert.False(t, state.SeasonsLoading)
}

func TestBack_ResetsStateAndReloadsHome(t *testing.T) {
	f := newFixture(t)
	sections := []models.HomeSection{{Title: "Series Populares"}}

	f.interpreter.EXPECT().InterpretQuery(gomock.Any(), "comedia").Return("comedy", nil)
	f.metadata.EXPECT().SearchMulti(gomock.Any(), "comedy").Return([]models.MediaSummary{{ID: 5, MediaType: models.MediaTypeMovie, Title: "C", PosterPath: "/c.jpg"}}, nil)
	f.recorder.EXPECT().Create(gomock.Any()).Return(nil)
	f.metadata.EXPECT().Detail(gomock.Any(), 5, models.MediaTypeMovie).Return(movieDetail(5, "C"), nil)
	f.metadata.EXPECT().HomeSections(gomock.Any()).Return(sections, nil)

	ctx := context.Background()
	require.NoError(t, f.orch.Search(ctx, "comedia"))
	require.NoError(t, f.orch.Select(ctx, 5, models.MediaTypeMovie))
	require.NoError(t, f.orch.Back(ctx))

	state := f.orch.Snapshot()
	assert.Equal(t, ViewHome, state.View)
	assert.Empty(t, state.Query)
	assert.False(t, state.Searching)
	assert.Empty(t, state.Results)
	assert.Nil(t, state.Detail)
	assert.Empty(t, state.Seasons)
	assert.Equal(t, sections, state.Sections)
}

func TestBack_DiscardsInFlightSeasons(t *testing.T) {
	f := newFixture(t)
	seasonStarted := make(chan struct{})

	f.metadata.EXPECT().Detail(gomock.Any(), 8, models.MediaTypeTV).Return(showDetail(8, 1), nil)
	f.metadata.EXPECT().Season(gomock.Any(), 8, 1).DoAndReturn(func(ctx context.Context, _, _ int) (*models.SeasonDetail, error) {
		close(seasonStarted)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	f.metadata.EXPECT().HomeSections(gomock.Any()).Return([]models.HomeSection{{Title: "x"}}, nil)

	ctx := context.Background()
	require.NoError(t, f.orch.Select(ctx, 8, models.MediaTypeTV))
	<-seasonStarted
	require.NoError(t, f.orch.Back(ctx))
	f.runner.Wait()

	state := f.orch.Snapshot()
	assert.Equal(t, ViewHome, state.View)
	assert.False(t, state.SeasonsLoading)
	assert.Nil(t, state.Detail)
}

func TestSearch_FromDetailsReturnsHome(t *testing.T) {
	f := newFixture(t)
	seasonStarted := make(chan struct{})
	results := []models.MediaSummary{{ID: 9, MediaType: models.MediaTypeMovie, Title: "Robots", PosterPath: "/r.jpg"}}

	f.metadata.EXPECT().Detail(gomock.Any(), 4, models.MediaTypeTV).Return(showDetail(4, 1), nil)
	f.metadata.EXPECT().Season(gomock.Any(), 4, 1).DoAndReturn(func(ctx context.Context, _, _ int) (*models.SeasonDetail, error) {
		close(seasonStarted)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	f.interpreter.EXPECT().InterpretQuery(gomock.Any(), "robots").Return("robots", nil)
	f.metadata.EXPECT().SearchMulti(gomock.Any(), "robots").Return(results, nil)
	f.recorder.EXPECT().Create(gomock.Any()).Return(nil)

	ctx := context.Background()
	require.NoError(t, f.orch.Select(ctx, 4, models.MediaTypeTV))
	f.orch.ClearScrollTop()
	<-seasonStarted

	require.NoError(t, f.orch.Search(ctx, "robots"))
	f.runner.Wait()

	state := f.orch.Snapshot()
	assert.Equal(t, ViewHome, state.View)
	assert.True(t, state.Searching)
	assert.Equal(t, results, state.Results)
	assert.Nil(t, state.Detail)
	assert.Empty(t, state.Seasons)
	assert.False(t, state.SeasonsLoading)
	assert.True(t, state.ScrollTop)
}

func TestSearch_DiscardsInFlightSelection(t *testing.T) {
	f := newFixture(t)
	started := make(chan struct{})

	f.metadata.EXPECT().Detail(gomock.Any(), 1, models.MediaTypeMovie).DoAndReturn(
		func(ctx context.Context, id int, _ models.MediaType) (*models.MediaDetail, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		})
	f.interpreter.EXPECT().InterpretQuery(gomock.Any(), "robots").Return("robots", nil)
	f.metadata.EXPECT().SearchMulti(gomock.Any(), "robots").Return(nil, nil)
	f.recorder.EXPECT().Create(gomock.Any()).Return(nil)

	selectErr := make(chan error, 1)
	go func() {
		selectErr <- f.orch.Select(context.Background(), 1, models.MediaTypeMovie)
	}()
	<-started

	require.NoError(t, f.orch.Search(context.Background(), "robots"))
	assert.ErrorIs(t, <-selectErr, ErrSuperseded)

	state := f.orch.Snapshot()
	assert.Equal(t, ViewHome, state.View)
	assert.Nil(t, state.Detail)
	assert.Empty(t, state.Error)
	assert.False(t, state.Loading)
}

func TestSearch_BlankQueryClearsLoadingOfSupersededSearch(t *testing.T) {
	f := newFixture(t)
	started := make(chan struct{})
	release := make(chan struct{})

	f.interpreter.EXPECT().InterpretQuery(gomock.Any(), "robots").DoAndReturn(func(context.Context, string) (string, error) {
		close(started)
		<-release
		return "robots", nil
	})
	f.metadata.EXPECT().SearchMulti(gomock.Any(), "robots").Return([]models.MediaSummary{{ID: 9, Title: "Robots"}}, nil)
	f.recorder.EXPECT().Create(gomock.Any()).Return(nil)

	firstErr := make(chan error, 1)
	go func() {
		firstErr <- f.orch.Search(context.Background(), "robots")
	}()
	<-started

	require.NoError(t, f.orch.Search(context.Background(), "  "))
	close(release)
	assert.ErrorIs(t, <-firstErr, ErrSuperseded)

	state := f.orch.Snapshot()
	assert.False(t, state.Loading)
	assert.False(t, state.Searching)
	assert.Empty(t, state.Results)
	assert.True(t, f.orch.HomePending())
}

func TestSearch_LaterSearchWins(t *testing.T) {
	f := newFixture(t)
	started := make(chan struct{})
	release := make(chan struct{})
	later := []models.MediaSummary{{ID: 2, MediaType: models.MediaTypeTV, Title: "Segunda", PosterPath: "/s.jpg"}}

	f.interpreter.EXPECT().InterpretQuery(gomock.Any(), "primera").DoAndReturn(func(context.Context, string) (string, error) {
		close(started)
		<-release
		return "primera", nil
	})
	f.metadata.EXPECT().SearchMulti(gomock.Any(), "primera").Return([]models.MediaSummary{{ID: 1, Title: "Primera"}}, nil)
	f.interpreter.EXPECT().InterpretQuery(gomock.Any(), "segunda").Return("segunda", nil)
	f.metadata.EXPECT().SearchMulti(gomock.Any(), "segunda").Return(later, nil)
	f.recorder.EXPECT().Create(gomock.Any()).Return(nil).Times(2)

	firstErr := make(chan error, 1)
	go func() {
		firstErr <- f.orch.Search(context.Background(), "primera")
	}()
	<-started

	require.NoError(t, f.orch.Search(context.Background(), "segunda"))
	close(release)
	assert.ErrorIs(t, <-firstErr, ErrSuperseded)

	state := f.orch.Snapshot()
	assert.Equal(t, "segunda", state.Keyword)
	assert.Equal(t, later, state.Results)
	assert.False(t, state.Loading)
}
