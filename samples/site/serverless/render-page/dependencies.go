//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/weegigs/wee-visits-go/connectors/visitslambda"
)

func live(ctx context.Context) (visitslambda.GatewayHandler, func(), error) {
	panic(wire.Build(Live))
}
