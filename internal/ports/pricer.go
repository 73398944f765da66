package ports

import "github.com/alejandrodnm/binotree/internal/domain"

// Pricer valora una opción. domain.Engine lo implementa.
type Pricer interface {
	Price(params domain.OptionParameters) (domain.PricingResult, error)
}
