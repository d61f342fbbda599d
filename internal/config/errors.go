package config

import "errors"

// Sentinel errors returned by the stores.
var (
	ErrLocalNotFound             = errors.New("local config file not found")
	ErrAlreadyExists             = errors.New("config file already exists")
	ErrRelativePath              = errors.New("path must be absolute")
	ErrProjectNotFound           = errors.New("project not found")
	ErrProjectAlreadyAdded       = errors.New("project already added")
	ErrSetupNotFound             = errors.New("setup not found")
	ErrSetupAlreadyExists        = errors.New("setup already exists")
	ErrPublicEnvDirAlreadyUnset  = errors.New("public env directory already unset")
	ErrPrivateEnvDirAlreadyUnset = errors.New("private env directory already unset")
)
