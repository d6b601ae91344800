package convert

import (
	"errors"

	"github.com/Borbofruto/Ruki/internal/emit"
)

var (
	// ErrUnknownBrand means the catalog has no such brand.
	ErrUnknownBrand = errors.New("unknown brand")

	// ErrUnknownConversion means the brand's conversion table has no such
	// entry, or it names a converter that is not registered.
	ErrUnknownConversion = errors.New("unknown conversion")

	// ErrCatalogMiss means no model parameters could be resolved.
	ErrCatalogMiss = errors.New("robot model not in catalog")

	// ErrMalformedInput means the input file could not be read or parsed.
	ErrMalformedInput = errors.New("malformed input")

	// ErrNoCommands means the input yielded nothing to convert.
	ErrNoCommands = emit.ErrNoCommands

	// ErrInternal wraps a panic recovered at the conversion boundary.
	ErrInternal = errors.New("internal error")
)

// message returns the user-facing text for a failed conversion.
func message(brand, conversion string, err error) string {
	switch {
	case errors.Is(err, ErrUnknownBrand):
		return "Emitter não encontrado para " + brand
	case errors.Is(err, ErrUnknownConversion):
		return "Conversão '" + conversion + "' não disponível"
	case errors.Is(err, ErrCatalogMiss):
		return "Dados do robô não encontrados"
	case errors.Is(err, ErrNoCommands):
		return "Nenhum comando encontrado"
	default:
		return "Erro: " + err.Error()
	}
}
