package repository

import (
	"gorm.io/gorm"
)

type Repository struct {
	AssetRepo *AssetRepository
	BlogRepo  *BlogRepository
}

var repository *Repository

func InitRepository(db *gorm.DB) *Repository {
	repository = &Repository{
		AssetRepo: NewAssetRepository(db),
		BlogRepo:  NewBlogRepository(db),
	}
	return repository
}

func GetRepository() *Repository {
	if repository == nil {
		panic("repository not initialized")
	}
	return repository
}
