package finance

import (
	"context"
	"net/http"

	"github.com/praxis-crm/praxis/internal/rbac"
	"github.com/praxis-crm/praxis/internal/routing"
)

// Routes declares the wallet and tuition endpoints. The export runs on the
// io pool; everything else is db work.
func (s *Service) Routes() []routing.Declaration {
	return []routing.Declaration{
		{
			Method:     http.MethodGet,
			Path:       "/api/wallets",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadDB,
			Permission: &routing.Requirement{Resource: rbac.ResourceWallet, Action: rbac.ActionView},
			Bindings: []routing.Binding{
				{Source: routing.SourcePageable},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return s.ListWallets(ctx, args.Page(0))
			},
		},
		{
			Method:     http.MethodGet,
			Path:       "/api/students/:id/wallet",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadDB,
			Permission: &routing.Requirement{Resource: rbac.ResourceWallet, Action: rbac.ActionView},
			Bindings: []routing.Binding{
				{Source: routing.SourcePath, Name: "id", Target: routing.TargetInt64},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return s.GetWallet(ctx, args.Int64(0))
			},
		},
		{
			Method:     http.MethodPost,
			Path:       "/api/students/:id/wallet/deposits",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadDB,
			Permission: &routing.Requirement{Resource: rbac.ResourceWallet, Action: rbac.ActionUpdate},
			Bindings: []routing.Binding{
				{Source: routing.SourcePath, Name: "id", Target: routing.TargetInt64},
				{Source: routing.SourceBody, Target: routing.TargetStruct, Required: true,
					Factory: func() any { return &DepositRequest{} }},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return s.Deposit(ctx, args.Int64(0), *args.Body(1).(*DepositRequest))
			},
		},
		{
			Method:     http.MethodPost,
			Path:       "/api/tuition",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadDB,
			Permission: &routing.Requirement{Resource: rbac.ResourceTuition, Action: rbac.ActionAdd},
			Bindings: []routing.Binding{
				{Source: routing.SourceBody, Target: routing.TargetStruct, Required: true,
					Factory: func() any { return &CreatePaymentRequest{} }},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return s.CreatePayment(ctx, *args.Body(0).(*CreatePaymentRequest))
			},
		},
		{
			Method:     http.MethodPost,
			Path:       "/api/tuition/:id/approve",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadDB,
			Permission: &routing.Requirement{Resource: rbac.ResourceTuition, Action: rbac.ActionApprove},
			Bindings: []routing.Binding{
				{Source: routing.SourcePath, Name: "id", Target: routing.TargetInt64},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return s.ApprovePayment(ctx, args.Int64(0))
			},
		},
		{
			Method:     http.MethodGet,
			Path:       "/api/wallets/export",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadIO,
			Permission: &routing.Requirement{Resource: rbac.ResourceWallet, Action: rbac.ActionExport},
			Handler: func(ctx context.Context, _ *routing.Args) (any, error) {
				return s.ExportWallets(ctx)
			},
		},
	}
}
