package router

import (
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/lberndt/helpline/app/controllers"
	"github.com/lberndt/helpline/app/repository"
	"github.com/lberndt/helpline/internal/pkg/config"
	"github.com/lberndt/helpline/internal/pkg/decision"
	"github.com/lberndt/helpline/internal/pkg/entitlements"
	"github.com/lberndt/helpline/internal/pkg/notify"
	"github.com/lberndt/helpline/internal/pkg/recordings"
	"github.com/lberndt/helpline/internal/pkg/s3media"
	"github.com/lberndt/helpline/internal/pkg/sessiontracker"
	"github.com/lberndt/helpline/internal/pkg/twilio"
)

// Dependencies is the wired object graph behind the HTTP surface.
type Dependencies struct {
	Cfg       *config.Config
	Voice     *controllers.VoiceController
	SMS       *controllers.SMSController
	Recording *controllers.RecordingController
	API       *controllers.APIMessageController
}

// BuildDependencies assembles the controllers from configuration and the DB
// handle. The decision engine receives everything explicitly; nothing in the
// core reads ambient state.
func BuildDependencies(cfg *config.Config, db *gorm.DB) *Dependencies {
	repos := repository.GetGlobalRepositories()

	client := twilio.NewClient(cfg.TwilioAccountID, cfg.TwilioAuthToken, cfg.ServiceNumber)
	notifier := notify.NewDispatcher(client, cfg.AdminNumber)

	resolver := entitlements.NewResolver(repos.User, repos.HelpSession)
	tracker := sessiontracker.NewTracker(db)
	meter := newMeter(cfg, repos)

	engine := decision.NewEngine(cfg, resolver, tracker, repos.FreeTrial, notifier, meter, offerCache{})

	archiver := buildArchiver(client)

	return &Dependencies{
		Cfg:       cfg,
		Voice:     controllers.NewVoiceController(cfg, engine, repos.HelpSession, repos.User, notifier),
		SMS:       controllers.NewSMSController(cfg, engine, repos.User, repos.HelpSession, notifier),
		Recording: controllers.NewRecordingController(repos.HelpSession, archiver, notifier),
		API:       controllers.NewAPIMessageController(repos.User, repos.HelpSession, client),
	}
}

func buildArchiver(client *twilio.Client) *recordings.Archiver {
	s3cfg, err := s3media.LoadConfig()
	if err != nil {
		log.Warnf("recording archival misconfigured, falling back to provider URLs: %v", err)
		return recordings.NewArchiver(client, nil, nil)
	}
	if !s3cfg.IsEnabled() {
		return recordings.NewArchiver(client, nil, s3cfg)
	}
	uploader, err := s3media.NewClient(s3cfg)
	if err != nil {
		log.Warnf("recording archival unavailable, falling back to provider URLs: %v", err)
		return recordings.NewArchiver(client, nil, s3cfg)
	}
	return recordings.NewArchiver(client, uploader, s3cfg)
}
