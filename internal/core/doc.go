// Package core provides the application logic of the analysis console.
//
// It is independent of any transport: the web handlers and the CLI both
// drive a [Service], which coordinates the dataset loader, the report
// generator and the statistical tests against a [session.Session].
//
// # Actions
//
// Every user action runs to completion before its result is published:
//
//   - [Service.Analyze] loads a file, builds its report and stores both in
//     the session. A failure at any step leaves the session unchanged.
//   - [Service.Reset] clears the session.
//   - [Service.Page] and [Service.FullView] read rows of the loaded table.
//   - [Service.RunTest] runs one of the four tests on the loaded report.
//   - [Service.RenderReport] renders the report, preferring HTML.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError].
// Each category has a code for support reference:
//
//   - FILE001-FILE004: upload and parse errors
//   - TEST001-TEST004: statistical test errors
//   - SES001, PAGE001, RND001: session, paging and rendering errors
//   - UPL002, UPL004, UPL005, RATE001: capacity and request errors
package core
