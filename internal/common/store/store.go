// Package store holds the shared PostgreSQL queries used by the
// assessment workers.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"assessment-workers/internal/models"
)

var ErrAssessmentNotFound = errors.New("assessment not found")

// Store wraps the assessment database queries.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// AssessmentContact holds the delivery coordinates for notifications.
type AssessmentContact struct {
	AssessmentID string
	Organization string
	ContactName  string
	ContactEmail string
	ContactPhone string
}

// GetContact loads the organization contact for an assessment.
func (s *Store) GetContact(ctx context.Context, assessmentID string) (*AssessmentContact, error) {
	var c AssessmentContact
	err := s.db.QueryRowContext(ctx, `
		SELECT id, organization, contact_name, contact_email, contact_phone
		FROM assessments
		WHERE id = $1`, assessmentID).Scan(
		&c.AssessmentID, &c.Organization, &c.ContactName, &c.ContactEmail, &c.ContactPhone,
	)
	if err == sql.ErrNoRows {
		return nil, ErrAssessmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadGlobalAnswers loads the diagnostic questionnaire answers for an
// assessment. Values are stored as JSON, one row per question key.
func (s *Store) LoadGlobalAnswers(ctx context.Context, assessmentID string) (models.GlobalAnswers, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT question_key, answer
		FROM assessment_answers
		WHERE assessment_id = $1`, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := models.GlobalAnswers{}
	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}

		var value interface{}
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("answer %q is not valid JSON: %w", key, err)
		}
		answers[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return answers, nil
}

// LoadSelectedUseCases loads the use cases selected for an assessment,
// preserving the selection order.
func (s *Store) LoadSelectedUseCases(ctx context.Context, assessmentID string) ([]models.UseCase, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT use_case_id, title, description, industry, impact, complexity,
		       ai_type, data_requirements, required_maturity
		FROM assessment_use_cases
		WHERE assessment_id = $1
		ORDER BY position`, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var useCases []models.UseCase
	for rows.Next() {
		var uc models.UseCase
		var requiredMaturity sql.NullFloat64
		if err := rows.Scan(
			&uc.ID, &uc.Title, &uc.Description, &uc.Industry,
			&uc.Impact, &uc.Complexity, &uc.AIType, &uc.DataRequirements,
			&requiredMaturity,
		); err != nil {
			return nil, err
		}
		if requiredMaturity.Valid {
			uc.RequiredMaturity = requiredMaturity.Float64
		}
		useCases = append(useCases, uc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return useCases, nil
}

// LoadResponses loads the per-use-case questionnaire responses for an
// assessment. The answers column is a JSON object.
func (s *Store) LoadResponses(ctx context.Context, assessmentID string) ([]models.QuestionnaireResponse, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT use_case_id, answers, score
		FROM questionnaire_responses
		WHERE assessment_id = $1`, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []models.QuestionnaireResponse
	for rows.Next() {
		var r models.QuestionnaireResponse
		var raw []byte
		var score sql.NullFloat64
		if err := rows.Scan(&r.UseCaseID, &raw, &score); err != nil {
			return nil, err
		}

		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &r.Answers); err != nil {
				return nil, fmt.Errorf("response answers for %q are not valid JSON: %w", r.UseCaseID, err)
			}
		}
		if score.Valid {
			r.Score = score.Float64
		} else {
			// The score column is a cached derivation; when it is
			// missing, recover it from the ratings so a well-rated
			// use case is not classified as unscored.
			r.Score = models.MeanScore(r.Answers)
		}
		responses = append(responses, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return responses, nil
}
