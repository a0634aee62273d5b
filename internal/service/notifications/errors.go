package notifications

import "errors"

var (
	// ErrInvalidCatalogue каталог шаблонов не разбирается
	ErrInvalidCatalogue = errors.New("notifications: invalid template catalogue")

	// ErrUnknownTemplate шаблона нет в каталоге
	ErrUnknownTemplate = errors.New("notifications: unknown template")

	// ErrRender ошибка подстановки payload в шаблон
	ErrRender = errors.New("notifications: render failed")

	// ErrHistory не удалось прочитать журнал
	ErrHistory = errors.New("notifications: failed to read history")
)
