package services

import (
	"fmt"
	"strings"

	"cinefinder/models"
)

type tmdbListResponse struct {
	Results []tmdbListItem `json:"results"`
}

// tmdbListItem covers list, top-rated and multi-search rows.
// Person rows in a multi search carry media_type "person" and no poster_path.
type tmdbListItem struct {
	ID         int    `json:"id"`
	MediaType  string `json:"media_type"`
	Title      string `json:"title"`
	Name       string `json:"name"`
	PosterPath string `json:"poster_path"`
}

type tmdbNamed struct {
	Name string `json:"name"`
}

type tmdbCast struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
}

type tmdbCrew struct {
	Job  string `json:"job"`
	Name string `json:"name"`
}

type tmdbProvider struct {
	ProviderID   int    `json:"provider_id"`
	ProviderName string `json:"provider_name"`
	LogoPath     string `json:"logo_path"`
}

type tmdbRegionOffer struct {
	Link     string         `json:"link"`
	Flatrate []tmdbProvider `json:"flatrate"`
}

type tmdbVideo struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

type tmdbCountry struct {
	ISO31661 string `json:"iso_3166_1"`
	Name     string `json:"name"`
}

type tmdbSeasonStub struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	SeasonNumber int    `json:"season_number"`
}

type tmdbDetailResponse struct {
	ID               int         `json:"id"`
	Title            string      `json:"title"`
	Name             string      `json:"name"`
	OriginalTitle    string      `json:"original_title"`
	OriginalName     string      `json:"original_name"`
	Overview         string      `json:"overview"`
	PosterPath       string      `json:"poster_path"`
	BackdropPath     string      `json:"backdrop_path"`
	VoteAverage      float64     `json:"vote_average"`
	VoteCount        int         `json:"vote_count"`
	ReleaseDate      string      `json:"release_date"`
	FirstAirDate     string      `json:"first_air_date"`
	Genres           []tmdbNamed `json:"genres"`
	Runtime          int         `json:"runtime"`
	EpisodeRunTime   []int       `json:"episode_run_time"`
	Status           string      `json:"status"`
	OriginalLanguage string      `json:"original_language"`
	Credits          struct {
		Cast []tmdbCast `json:"cast"`
		Crew []tmdbCrew `json:"crew"`
	} `json:"credits"`
	WatchProviders struct {
		Results map[string]tmdbRegionOffer `json:"results"`
	} `json:"watch/providers"`
	Videos struct {
		Results []tmdbVideo `json:"results"`
	} `json:"videos"`
	ProductionCompanies []tmdbNamed      `json:"production_companies"`
	ProductionCountries []tmdbCountry    `json:"production_countries"`
	Budget              int64            `json:"budget"`
	Revenue             int64            `json:"revenue"`
	CreatedBy           []tmdbNamed      `json:"created_by"`
	NumberOfSeasons     int              `json:"number_of_seasons"`
	Seasons             []tmdbSeasonStub `json:"seasons"`
}

func (p *tmdbDetailResponse) toDetail(mediaType models.MediaType, region string) *models.MediaDetail {
	d := &models.MediaDetail{
		ID:                  p.ID,
		MediaType:           mediaType,
		Overview:            p.Overview,
		PosterPath:          p.PosterPath,
		BackdropPath:        p.BackdropPath,
		VoteAverage:         p.VoteAverage,
		VoteCount:           p.VoteCount,
		Status:              p.Status,
		OriginalLanguage:    p.OriginalLanguage,
		Genres:              names(p.Genres),
		ProductionCompanies: names(p.ProductionCompanies),
		Cast:                make([]models.CastMember, 0, len(p.Credits.Cast)),
		Crew:                make([]models.CrewMember, 0, len(p.Credits.Crew)),
		Providers:           []models.Provider{},
		ProductionCountries: make([]models.Country, 0, len(p.ProductionCountries)),
	}

	for _, c := range p.Credits.Cast {
		d.Cast = append(d.Cast, models.CastMember{ID: c.ID, Name: c.Name, Character: c.Character, ProfilePath: c.ProfilePath})
	}
	for _, c := range p.Credits.Crew {
		d.Crew = append(d.Crew, models.CrewMember{Job: c.Job, Name: c.Name})
	}
	for _, c := range p.ProductionCountries {
		d.ProductionCountries = append(d.ProductionCountries, models.Country{Code: c.ISO31661, Name: c.Name})
	}

	if offer, ok := p.WatchProviders.Results[region]; ok {
		d.ProviderLink = offer.Link
		for _, pr := range offer.Flatrate {
			d.Providers = append(d.Providers, models.Provider{ID: pr.ProviderID, Name: pr.ProviderName, LogoPath: pr.LogoPath})
		}
	}

	d.Trailer = pickTrailer(p.Videos.Results)

	switch mediaType {
	case models.MediaTypeMovie:
		d.Title = p.Title
		d.OriginalTitle = p.OriginalTitle
		d.ReleaseDate = p.ReleaseDate
		d.Runtime = p.Runtime
		d.Movie = &models.MovieFacts{Budget: p.Budget, Revenue: p.Revenue}
	case models.MediaTypeTV:
		d.Title = p.Name
		d.OriginalTitle = p.OriginalName
		d.ReleaseDate = p.FirstAirDate
		if len(p.EpisodeRunTime) > 0 {
			d.Runtime = p.EpisodeRunTime[0]
		}
		show := &models.ShowFacts{
			NumberOfSeasons: p.NumberOfSeasons,
			CreatedBy:       names(p.CreatedBy),
			Seasons:         make([]models.SeasonSummary, 0, len(p.Seasons)),
		}
		for _, s := range p.Seasons {
			show.Seasons = append(show.Seasons, models.SeasonSummary{ID: s.ID, Name: s.Name, SeasonNumber: s.SeasonNumber})
		}
		d.Show = show
	}

	return d
}

// pickTrailer returns the first YouTube trailer, if any.
func pickTrailer(videos []tmdbVideo) *models.Trailer {
	for _, v := range videos {
		key := strings.TrimSpace(v.Key)
		if key == "" || !strings.EqualFold(v.Site, "YouTube") || v.Type != "Trailer" {
			continue
		}
		return &models.Trailer{
			Name: v.Name,
			Key:  key,
			URL:  fmt.Sprintf("https://www.youtube.com/watch?v=%s", key),
		}
	}
	return nil
}

func names(in []tmdbNamed) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		out = append(out, n.Name)
	}
	return out
}

type tmdbEpisode struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	EpisodeNumber int    `json:"episode_number"`
	Overview      string `json:"overview"`
}

type tmdbSeasonResponse struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	SeasonNumber int           `json:"season_number"`
	Episodes     []tmdbEpisode `json:"episodes"`
}

func (p *tmdbSeasonResponse) toSeason() *models.SeasonDetail {
	season := &models.SeasonDetail{
		ID:           p.ID,
		Name:         p.Name,
		SeasonNumber: p.SeasonNumber,
		Episodes:     make([]models.Episode, 0, len(p.Episodes)),
	}
	for _, e := range p.Episodes {
		season.Episodes = append(season.Episodes, models.Episode{
			ID:            e.ID,
			EpisodeNumber: e.EpisodeNumber,
			Name:          e.Name,
			Overview:      e.Overview,
		})
	}
	return season
}
