package tool

import (
	"context"
	"errors"
	"testing"

	ragentErrors "github.com/harunnryd/ragent/internal/errors"
	"github.com/harunnryd/ragent/internal/model/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookupArgs struct {
	TransactionID string `json:"transactionId"`
}

func lookupTool(name string, handler Handler[lookupArgs]) Tool {
	return New(contract.ToolDef{
		Name:        name,
		Description: "lookup",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"transactionId": map[string]interface{}{"type": "string"},
			},
			"required": []string{"transactionId"},
		},
	}, handler)
}

func echoID(ctx context.Context, args lookupArgs) (string, error) {
	return JSON(map[string]string{"id": args.TransactionID})
}

func TestRegistryRegister_RejectsDuplicates(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(lookupTool("getPaymentStatus", echoID)))

	err := registry.Register(lookupTool(" getPaymentStatus", echoID))
	require.Error(t, err)
	assert.True(t, ragentErrors.Is(err, ragentErrors.ErrConflict))
	assert.Equal(t, 1, registry.Len())
}

func TestRegistryRegister_RejectsEmptyName(t *testing.T) {
	err := NewRegistry().Register(lookupTool("  ", echoID))
	require.Error(t, err)
	assert.True(t, ragentErrors.Is(err, ragentErrors.ErrInvalidInput))
}

func TestRegistryDeclarations_RegistrationOrder(t *testing.T) {
	registry := NewRegistry().MustRegister(
		lookupTool("zeta", echoID),
		lookupTool("alpha", echoID),
		lookupTool("mid", echoID),
	)

	first := registry.Declarations()
	second := registry.Declarations()

	names := make([]string, 0, len(first))
	for _, d := range first {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)
	assert.Equal(t, first, second)
}

func TestRegistryDispatch(t *testing.T) {
	registry := NewRegistry().MustRegister(lookupTool("getPaymentStatus", echoID))

	out, err := registry.Dispatch(context.Background(), "getPaymentStatus", `{"transactionId":"T1001"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"T1001"}`, out)
}

func TestRegistryDispatch_UnknownTool(t *testing.T) {
	registry := NewRegistry().MustRegister(lookupTool("getPaymentStatus", echoID))

	_, err := registry.Dispatch(context.Background(), "getRefund", `{}`)
	require.Error(t, err)
	assert.True(t, ragentErrors.Is(err, ragentErrors.ErrUnknownTool))
	assert.Contains(t, err.Error(), "getRefund")
}

func TestRegistryDispatch_MalformedArguments(t *testing.T) {
	registry := NewRegistry().MustRegister(lookupTool("getPaymentStatus", echoID))

	tests := []struct {
		name string
		args string
	}{
		{name: "not json", args: `transactionId=T1001`},
		{name: "missing required", args: `{}`},
		{name: "empty means empty object", args: ``},
		{name: "wrong type", args: `{"transactionId": 1001}`},
		{name: "unknown key", args: `{"transactionId":"T1001","amount":3}`},
		{name: "trailing data", args: `{"transactionId":"T1001"} {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.Dispatch(context.Background(), "getPaymentStatus", tt.args)
			require.Error(t, err)
			assert.True(t, ragentErrors.Is(err, ragentErrors.ErrMalformedToolArguments), "got %v", err)
		})
	}
}

func TestRegistryDispatch_EmptyArgsForNoArgTool(t *testing.T) {
	registry := NewRegistry().MustRegister(New(contract.ToolDef{
		Name:       "getLocation",
		Parameters: map[string]interface{}{"type": "object", "properties": map[string]interface{}{}},
	}, func(ctx context.Context, _ NoArgs) (string, error) {
		return `{"city":"Paris"}`, nil
	}))

	out, err := registry.Dispatch(context.Background(), "getLocation", "")
	require.NoError(t, err)
	assert.Equal(t, `{"city":"Paris"}`, out)
}

func TestRegistryDispatch_HandlerFailure(t *testing.T) {
	registry := NewRegistry().MustRegister(lookupTool("getPaymentStatus", func(ctx context.Context, args lookupArgs) (string, error) {
		return "", errors.New("upstream 503")
	}))

	_, err := registry.Dispatch(context.Background(), "getPaymentStatus", `{"transactionId":"T1"}`)
	require.Error(t, err)
	assert.True(t, ragentErrors.Is(err, ragentErrors.ErrToolFailed))
	assert.Contains(t, err.Error(), "upstream 503")
}

func TestRegistryDispatch_HandlerPanic(t *testing.T) {
	registry := NewRegistry().MustRegister(lookupTool("getPaymentStatus", func(ctx context.Context, args lookupArgs) (string, error) {
		panic("nil map")
	}))

	_, err := registry.Dispatch(context.Background(), "getPaymentStatus", `{"transactionId":"T1"}`)
	require.Error(t, err)
	assert.True(t, ragentErrors.Is(err, ragentErrors.ErrToolFailed))
}

func TestRegistryDispatch_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	registry := NewRegistry().MustRegister(lookupTool("getPaymentStatus", func(ctx context.Context, args lookupArgs) (string, error) {
		cancel()
		return "", ctx.Err()
	}))

	_, err := registry.Dispatch(ctx, "getPaymentStatus", `{"transactionId":"T1"}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, ragentErrors.Is(err, ragentErrors.ErrToolFailed))
}

func TestRegistryDescriptors_DefaultMetadata(t *testing.T) {
	registry := NewRegistry().MustRegister(
		lookupTool("plain", echoID),
		WithMetadata(lookupTool("tagged", echoID), ToolMetadata{Source: "Builtin", Capabilities: []string{"B", "a", "a"}, Risk: "LOW"}),
	)

	descriptors := registry.Descriptors()
	require.Len(t, descriptors, 2)
	assert.Equal(t, "runtime", descriptors[0].Metadata.Source)
	assert.Equal(t, RiskMedium, descriptors[0].Metadata.Risk)
	assert.Equal(t, "builtin", descriptors[1].Metadata.Source)
	assert.Equal(t, []string{"a", "b"}, descriptors[1].Metadata.Capabilities)
	assert.Equal(t, RiskLow, descriptors[1].Metadata.Risk)
}
