package actor

import "actr/internal/errs"

var (
	ErrObjectAndConstructor  = errs.ErrObjectAndConstructor
	ErrNoObjectOrConstructor = errs.ErrNoObjectOrConstructor
	ErrActionIsNil           = errs.ErrActionIsNil
	ErrSystemShuttingDown    = errs.ErrSystemShuttingDown
	ErrSystemShutDown        = errs.ErrSystemShutDown
	ErrAskOutsideActor       = errs.ErrAskOutsideActor
)
