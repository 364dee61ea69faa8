package conf

import (
	"fmt"

	"go.uber.org/fx"
)

// NewModule creates an Fx module that supplies a named *Config built from
// the given options. The name is used as both the Fx module name and the DI
// named tag, so multiple configurations can coexist in one application.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func NewModule(name string, opts ...Option) fx.Option {
	if name == "" {
		return fx.Error(ErrEmptyName)
	}

	return fx.Module(name, fx.Provide(
		fx.Annotate(
			func() (*Config, error) {
				return New(opts...)
			},
			fx.ResultTags(fmt.Sprintf(`name:%q`, name)),
		),
	))
}
