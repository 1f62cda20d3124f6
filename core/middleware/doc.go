// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting every route except the docs.
//   - rayid: assigns a Request ID (RayID) to every request, storing it in the context
//     locals and echoing it in the X-Ray-ID response header.
package middleware
