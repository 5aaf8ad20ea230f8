package main

import (
	"github.com/rs/zerolog/log"

	"github.com/campusvoice/campusvoice"
	"github.com/campusvoice/campusvoice/cmd"
	"github.com/campusvoice/campusvoice/pgstore"
)

type seedRequest struct {
	content  string
	category string
	owner    string
	upvotes  []string
	downs    []string
	comments []string
}

var seeds = []seedRequest{
	{
		content:  "The library needs more power outlets on the second floor, half the desks have none at all.",
		category: campusvoice.CategoryFacilities,
		owner:    "user_seed_amelia",
		upvotes:  []string{"user_seed_bruno", "user_seed_chloe", "user_seed_dimitri"},
		comments: []string{"Same on the third floor", "Bring a power strip, works for a whole table"},
	},
	{
		content:  "Extend cafeteria hours during exam weeks, it closes before evening study sessions end.",
		category: campusvoice.CategoryAcademic,
		owner:    "user_seed_bruno",
		upvotes:  []string{"user_seed_amelia", "user_seed_chloe"},
		downs:    []string{"user_seed_dimitri"},
		comments: []string{"Even an extra hour would help"},
	},
	{
		content:  "The Wi-Fi in the west dorms drops every evening around 8pm.",
		category: campusvoice.CategoryFacilities,
		owner:    "user_seed_chloe",
		upvotes:  []string{"user_seed_amelia", "user_seed_bruno", "user_seed_dimitri", "user_seed_elif"},
	},
}

func main() {
	cfg := cmd.DefaultConfig()
	err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot read configuration")
	}
	logger := cmd.SetupLogger(cfg)
	logger.Info().Msg("Seeding database")

	pg := pgstore.New(cfg.DatabaseString())
	err = pg.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("Can't connect to database")
	}
	err = pg.EnsureSchema()
	if err != nil {
		log.Fatal().Err(err).Msg("Can't ensure database schema")
	}

	for _, seed := range seeds {
		request := campusvoice.NewRequest(seed.content, seed.category, seed.owner, "")
		err := pg.CreateRequest(request)
		if err != nil {
			log.Fatal().Err(err).Msg("Can't create request")
		}

		for _, key := range seed.upvotes {
			err := pg.ApplyVote(request.ID, key, campusvoice.VoteUp)
			if err != nil {
				log.Fatal().Err(err).Msg("Can't create vote")
			}
		}
		for _, key := range seed.downs {
			err := pg.ApplyVote(request.ID, key, campusvoice.VoteDown)
			if err != nil {
				log.Fatal().Err(err).Msg("Can't create vote")
			}
		}

		for _, text := range seed.comments {
			err := pg.InsertComment(campusvoice.NewComment(request.ID, text))
			if err != nil {
				log.Fatal().Err(err).Msg("Can't create comment")
			}
		}

		logger.Info().Str("request_id", request.ID).Msg("Seeded request")
	}
}
