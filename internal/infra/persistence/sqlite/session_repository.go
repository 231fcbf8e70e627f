package sqlite

import (
	"context"
	"encoding/json"

	"vigil/internal/domain/entity"
	domainerrors "vigil/internal/domain/errors"
	"vigil/internal/domain/repository"
	"vigil/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sessionRepository implements the repository.SessionRepository interface.
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository is the constructor for sessionRepository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{
		db: db,
	}
}

// Load reads both keys and reassembles the session. A flag without a stored
// profile violates the session invariant and degrades to logged-out.
func (repo *sessionRepository) Load(ctx context.Context) (*entity.Session, error) {
	var rows []model.SessionEntryModel

	if err := repo.db.WithContext(ctx).
		Where("key IN ?", []string{model.KeyIsLoggedIn, model.KeyUserProfile}).
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to read session entries")
	}

	if len(rows) == 0 {
		return nil, repository.ErrSessionNotFound
	}

	session := &entity.Session{}
	for _, row := range rows {
		switch row.Key {
		case model.KeyIsLoggedIn:
			session.IsAuthenticated = row.Value == "true"
		case model.KeyUserProfile:
			var profile entity.UserProfile
			if err := json.Unmarshal([]byte(row.Value), &profile); err != nil {
				return nil, domainerrors.ErrSessionLoadFailed.WrapMessage("stored profile is not valid JSON")
			}
			session.User = &profile
		}
	}

	if !session.Valid() {
		// Half-written state should never happen given the transactional
		// writes below; treat it as logged-out rather than failing startup.
		session.IsAuthenticated = false
		session.User = nil
	}

	return session, nil
}

// Save upserts both keys inside one transaction so a crash can never leave a
// flag-only or profile-only store behind.
func (repo *sessionRepository) Save(ctx context.Context, session *entity.Session) error {
	if !session.Valid() {
		return domainerrors.ErrSessionSaveFailed.WrapMessage("session has flag set without a profile")
	}

	flag := "false"
	if session.IsAuthenticated {
		flag = "true"
	}

	profileJSON := "null"
	if session.User != nil {
		raw, err := json.Marshal(session.User)
		if err != nil {
			return errors.Wrap(err, "failed to marshal profile")
		}
		profileJSON = string(raw)
	}

	entries := []model.SessionEntryModel{
		{Key: model.KeyIsLoggedIn, Value: flag},
		{Key: model.KeyUserProfile, Value: profileJSON},
	}

	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&entries).Error
	})
	if err != nil {
		return errors.Wrap(err, "failed to save session")
	}

	return nil
}

// Clear deletes both keys inside one transaction.
func (repo *sessionRepository) Clear(ctx context.Context) error {
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.
			Where("key IN ?", []string{model.KeyIsLoggedIn, model.KeyUserProfile}).
			Delete(&model.SessionEntryModel{}).Error
	})
	if err != nil {
		return errors.Wrap(err, "failed to clear session")
	}

	return nil
}
