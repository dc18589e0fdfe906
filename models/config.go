package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	ErrConfigNoPhases        = errors.New("tournament config has no phases")
	ErrConfigPhaseIDConflict = errors.New("tournament config has duplicate phase ids")
	ErrConfigMatchConflict   = errors.New("tournament config has duplicate match numbers")
	ErrConfigRangeOverlap    = errors.New("phase match ranges must be contiguous and disjoint")
	ErrConfigScoringFields   = errors.New("phase scoring fields do not match scoring type")
	ErrConfigOrphanFixture   = errors.New("fixture does not belong to its declared phase")
)

// LoadTournamentConfig читает конфигурацию турнира из JSON-файла.
func LoadTournamentConfig(path string) (*TournamentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tournament config %s: %w", path, err)
	}
	var cfg TournamentConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse tournament config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет структурные инварианты конфигурации: уникальность фаз и
// матчей, непрерывность диапазонов, соответствие полей подсчёта типу фазы.
// Временные инварианты (парсинг дедлайнов, таймзона) проверяет пакет tournament.
func (c *TournamentConfig) Validate() error {
	if len(c.Phases) == 0 {
		return ErrConfigNoPhases
	}

	seenPhases := make(map[string]bool, len(c.Phases))
	nextStart := c.Phases[0].MatchRange.Start
	for _, p := range c.Phases {
		if seenPhases[p.ID] {
			return fmt.Errorf("%w: %q", ErrConfigPhaseIDConflict, p.ID)
		}
		seenPhases[p.ID] = true

		if p.MatchRange.Start != nextStart || p.MatchRange.End < p.MatchRange.Start {
			return fmt.Errorf("%w: phase %q covers %d-%d, expected start %d",
				ErrConfigRangeOverlap, p.ID, p.MatchRange.Start, p.MatchRange.End, nextStart)
		}
		nextStart = p.MatchRange.End + 1

		switch p.ScoringType {
		case ScoringFixed:
			if p.PointsPerCorrect == nil || p.PoolSize != nil {
				return fmt.Errorf("%w: phase %q is fixed and must set pointsPerCorrect only", ErrConfigScoringFields, p.ID)
			}
		case ScoringPool:
			if p.PoolSize == nil || p.PointsPerCorrect != nil {
				return fmt.Errorf("%w: phase %q is pool and must set poolSize only", ErrConfigScoringFields, p.ID)
			}
		default:
			return fmt.Errorf("%w: phase %q has scoring type %q", ErrConfigScoringFields, p.ID, p.ScoringType)
		}
	}

	seenMatches := make(map[int]bool, len(c.Fixtures))
	for _, f := range c.Fixtures {
		if seenMatches[f.Match] {
			return fmt.Errorf("%w: match %d", ErrConfigMatchConflict, f.Match)
		}
		seenMatches[f.Match] = true

		phase := c.PhaseByID(f.Phase)
		if phase == nil || !phase.MatchRange.Contains(f.Match) {
			return fmt.Errorf("%w: match %d declares phase %q", ErrConfigOrphanFixture, f.Match, f.Phase)
		}
	}

	return nil
}
