package multisig

type ServiceOption func(*Service)

// WithBlockhashProvider overrides where the partial transaction gets its
// recent blockhash from.
func WithBlockhashProvider(provider BlockhashProvider) ServiceOption {
	return func(svc *Service) {
		if provider != nil {
			svc.blockhash = provider
		}
	}
}
