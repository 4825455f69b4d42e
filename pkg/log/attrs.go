package log

import "log/slog"

func WorkflowID(id string) slog.Attr {
	return slog.String("workflow_id", id)
}

func ExecutionID(id string) slog.Attr {
	return slog.String("execution_id", id)
}

func StepID(id string) slog.Attr {
	return slog.String("step_id", id)
}

func StepType[T ~string](t T) slog.Attr {
	return slog.String("step_type", string(t))
}

func Status[T ~string](status T) slog.Attr {
	return slog.String("status", string(status))
}

func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}

func ErrorString(msg string) slog.Attr {
	return slog.String("error", msg)
}
