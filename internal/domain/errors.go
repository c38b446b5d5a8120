package domain

import "errors"

// Messages below are part of the API surface: they are returned verbatim in 4xx bodies.
var (
	ErrInvalidPrice    = errors.New("Un prix doit être strictement positif.")
	ErrInactiveProduct = errors.New("Le produit est inactif.")
	ErrProductNotFound = errors.New("Produit non trouvé.")
	ErrDuplicateID     = errors.New("Un produit avec cet identifiant existe déjà.")

	ErrInvalidCredentials = errors.New("Identifiants invalides")
	ErrMissingToken       = errors.New("Jeton d'authentification manquant")
	ErrInvalidToken       = errors.New("Jeton d'authentification invalide ou expiré")

	ErrMisconfiguredSigningKey = errors.New("signing key missing or shorter than 32 characters")
	ErrStorage                 = errors.New("storage failure")
)

// Kind groups errors by how the HTTP boundary reports them.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindDomainRule
	KindNotFound
	KindConflict
	KindUnauthorized
	KindInfrastructure
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDomainRule:
		return "domain_rule"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindInfrastructure:
		return "infrastructure"
	default:
		return "unexpected"
	}
}

// kinds is checked in order; infrastructure wins over anything it was joined with.
var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrStorage, KindInfrastructure},
	{ErrMisconfiguredSigningKey, KindInfrastructure},
	{ErrInvalidPrice, KindValidation},
	{ErrInactiveProduct, KindDomainRule},
	{ErrProductNotFound, KindNotFound},
	{ErrDuplicateID, KindConflict},
	{ErrInvalidCredentials, KindUnauthorized},
	{ErrMissingToken, KindUnauthorized},
	{ErrInvalidToken, KindUnauthorized},
}

// KindOf classifies err. Errors outside the taxonomy are KindUnexpected.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnexpected
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnexpected
}

// Sentinel returns the taxonomy error wrapped inside err, so that callers can
// report its message without the wrapping context.
func Sentinel(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.err
		}
	}
	return err
}
