//go:build !protogen

package calendarcfg

import "log/slog"

func NewOwnerSettingsProvider(_ *slog.Logger, fallback Settings, _ string) (Provider, error) {
	return NewStaticProvider(fallback), nil
}
