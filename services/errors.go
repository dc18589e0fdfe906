package services

import "errors"

// Бизнес-ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурсы
	ErrPhaseNotFound   = errors.New("phase not found")
	ErrFixtureNotFound = errors.New("fixture not found")

	// Пики и сабмиты
	ErrMatchNotInPhase    = errors.New("match does not belong to the phase")
	ErrUnknownTeam        = errors.New("pick does not match either team in the fixture")
	ErrIncompletePicks    = errors.New("final submission requires a pick for every match in the phase")
	ErrSubmissionLocked   = errors.New("submission is locked for this phase")
	ErrLateAckRequired    = errors.New("late submission must be explicitly acknowledged")
	ErrBonusPhaseMismatch = errors.New("bonus answers are only accepted for the bonus-eligible phase")

	// Чипы
	ErrChipsDisabled              = errors.New("chips are disabled for this tournament")
	ErrChipAlreadyUsed            = errors.New("chip already used in this phase")
	ErrChipTargetStarted          = errors.New("chip target match has already started")
	ErrDoubleUpNotAllowed         = errors.New("double up is not available in this phase")
	ErrChipRegistrationIncomplete = errors.New("pick updated but chip registration failed")

	// Результаты
	ErrInvalidWinner = errors.New("winner must be one of the fixture teams or DRAW")

	// Аутентификация
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrAuthNameTaken          = errors.New("name is already taken")
	ErrPasswordTooShort       = errors.New("password is too short")
)
