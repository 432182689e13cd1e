package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Close   func(CloseArgs) (Result, error)
	Regen   func(RegenArgs) (Result, error)
	Preview func(PreviewArgs) (Result, error)
	Edit    func(EditArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeClose:
		if handlers.Close == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "close handler not configured"}
		}
		return handlers.Close(*cmd.Close)
	case TypeRegen:
		if handlers.Regen == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "regen handler not configured"}
		}
		return handlers.Regen(*cmd.Regen)
	case TypePreview:
		if handlers.Preview == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "preview handler not configured"}
		}
		return handlers.Preview(*cmd.Preview)
	case TypeEdit:
		if handlers.Edit == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "edit handler not configured"}
		}
		return handlers.Edit(*cmd.Edit)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
