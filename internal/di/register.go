package di

import "github.com/samber/do/v2"

// RegisterSingletons registers all service providers as singletons, in
// dependency order:
//  1. Config (no dependencies)
//  2. Logger (depends on Config)
//  3. Cache (depends on Config)
//  4. Breaker (depends on Config, Logger)
//  5. Limiter (depends on Config)
//  6. Environment (depends on Breaker, Limiter, Logger)
//  7. TokenSource (depends on Config)
//  8. GlobalContext (depends on Config, TokenSource)
//  9. DataPlane (no dependencies beyond construction)
//  10. Manager (depends on Environment, GlobalContext, Config, Cache, DataPlane, Logger)
func RegisterSingletons(i do.Injector) {
	do.Provide(i, NewConfig)
	do.Provide(i, NewLogger)
	do.Provide(i, NewCache)
	do.Provide(i, NewBreaker)
	do.Provide(i, NewLimiter)
	do.Provide(i, NewEnvironment)
	do.Provide(i, NewTokenSource)
	do.Provide(i, NewGlobalContext)
	do.Provide(i, NewDataPlane)
	do.Provide(i, NewManager)
}
