package controller

import (
	"github.com/lumenhealth/media-asset-service/config"
	"github.com/lumenhealth/media-asset-service/infra"
	"github.com/lumenhealth/media-asset-service/repository"
	"github.com/lumenhealth/media-asset-service/storage"
	"github.com/lumenhealth/media-asset-service/upload"
	"github.com/lumenhealth/media-asset-service/utils"
)

type Controller struct {
	Config       *config.Config
	Infra        *infra.Infra
	Repository   *repository.Repository
	Adapter      *storage.Adapter
	Signer       *storage.Signer
	Orchestrator *upload.Orchestrator
	Clock        utils.Clock
}

func NewController(
	cfg *config.Config,
	infra *infra.Infra,
	repo *repository.Repository,
	adapter *storage.Adapter,
	signer *storage.Signer,
	orchestrator *upload.Orchestrator,
	clock utils.Clock,
) *Controller {
	return &Controller{
		Config:       cfg,
		Infra:        infra,
		Repository:   repo,
		Adapter:      adapter,
		Signer:       signer,
		Orchestrator: orchestrator,
		Clock:        clock,
	}
}
