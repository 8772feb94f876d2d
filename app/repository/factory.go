package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Repositories bundles all repository instances.
type Repositories struct {
	User        UserRepository
	FreeTrial   FreeTrialRepository
	HelpSession HelpSessionRepository
	UsageRecord UsageRecordRepository
}

// NewRepositories wires every repository to the given DB handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:        NewUserRepository(db),
		FreeTrial:   NewFreeTrialRepository(db),
		HelpSession: NewHelpSessionRepository(db),
		UsageRecord: NewUsageRecordRepository(db),
	}
}

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetUserRepository returns the user repository instance
func (f *Factory) GetUserRepository() UserRepository {
	return f.GetRepositories().User
}

// GetFreeTrialRepository returns the free trial repository instance
func (f *Factory) GetFreeTrialRepository() FreeTrialRepository {
	return f.GetRepositories().FreeTrial
}

// GetHelpSessionRepository returns the help session repository instance
func (f *Factory) GetHelpSessionRepository() HelpSessionRepository {
	return f.GetRepositories().HelpSession
}

// GetUsageRecordRepository returns the usage record repository instance
func (f *Factory) GetUsageRecordRepository() UsageRecordRepository {
	return f.GetRepositories().UsageRecord
}

// Global factory instance
var globalFactory *Factory
var factoryOnce sync.Once

// InitializeFactory initializes the global repository factory
func InitializeFactory(db *gorm.DB) {
	factoryOnce.Do(func() {
		globalFactory = NewFactory(db)
	})
}

// GetGlobalFactory returns the global repository factory instance
func GetGlobalFactory() *Factory {
	if globalFactory == nil {
		panic("Repository factory not initialized. Call InitializeFactory first.")
	}
	return globalFactory
}

// GetGlobalRepositories returns the global repositories instance
func GetGlobalRepositories() *Repositories {
	return GetGlobalFactory().GetRepositories()
}
