// Package app composes the ZenScore services into a running application.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Application struct, wiring and lifecycle
//	├── domain/             # Domain models (pure data structures)
//	│   ├── account/        # Accounts, settings and running stats
//	│   ├── session/        # Usage sessions and categories
//	│   └── score/          # Score snapshots
//	├── storage/            # Storage interfaces and implementations
//	│   ├── interfaces.go   # AccountStore, SessionStore, ScoreStore
//	│   ├── memory/         # In-memory implementation for tests and dev
//	│   └── sqlstore/       # Postgres and SQLite implementation
//	├── services/           # auth, sessions, score, reporting, insights
//	├── httpapi/            # HTTP handlers and routing
//	├── runtime/            # Process wiring: database, server, shutdown
//	├── system/             # Lifecycle manager for background components
//	├── validation/         # Request validation
//	└── metrics/            # Prometheus collectors
//
// # Dependency Direction
//
//	cmd/zenscore/
//	      │
//	      ▼
//	internal/app/runtime ──► internal/app/httpapi
//	      │                        │
//	      ▼                        ▼
//	internal/app (composition) ──► internal/app/services ──► internal/app/storage
//
// Services receive their stores and options through constructors; nothing
// in the tree reads process-wide singletons.
package app
