package cli

// Коды завершения taskctl
const (
	ExitOK = 0
	// ExitUserError - неверные аргументы, не найдено, неоднозначно, отказ валидации
	ExitUserError = 1
	// ExitAuthError - нет сессии или токен отвергнут
	ExitAuthError = 2
	// ExitBackendError - сеть, 5xx, непредвиденный ответ
	ExitBackendError = 3
)
