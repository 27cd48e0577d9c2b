package course

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Chanjeong/walkman/internal/db"

	"github.com/google/uuid"
)

var ErrEmptyCourse = errors.New("저장할 마커가 없습니다")

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Create(ctx context.Context, input Course) (Course, error) {
	if len(input.Markers) == 0 {
		return Course{}, ErrEmptyCourse
	}

	input.ID = uuid.NewString()
	markers, err := json.Marshal(input.Markers)
	if err != nil {
		return Course{}, err
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO courses (id, name, description, markers, total_distance_km, total_time_min, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at
	`, input.ID, input.Name, input.Description, markers, input.TotalDistanceKm, input.TotalTimeMin, input.CreatedBy)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Course{}, err
	}
	return input, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Course, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, description, markers, total_distance_km, total_time_min, created_by, created_at
		FROM courses WHERE created_by=$1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []Course
	for rows.Next() {
		var c Course
		var markers []byte
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &markers, &c.TotalDistanceKm, &c.TotalTimeMin, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(markers, &c.Markers); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (Course, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, description, markers, total_distance_km, total_time_min, created_by, created_at
		FROM courses WHERE id=$1 AND created_by=$2
	`, id, userID)

	var c Course
	var markers []byte
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &markers, &c.TotalDistanceKm, &c.TotalTimeMin, &c.CreatedBy, &c.CreatedAt); err != nil {
		return Course{}, err
	}
	if err := json.Unmarshal(markers, &c.Markers); err != nil {
		return Course{}, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM courses WHERE id=$1 AND created_by=$2`, id, userID)
	return err
}
