// Package protocol implements the HTTP client for the cryptogram sync server.
//
// # Endpoints
//
//	POST {base}/api/games/reconcile   plan request, answered with a reconciliation plan
//	GET  {base}/api/games/{id}        single game payload
//	POST {base}/api/games             game upload, 200 or 201 on success
//
// Every request carries "Authorization: Bearer <token>". An empty token fails with
// syncerr.AuthenticationRequired before any request is sent.
//
// # Error mapping
//
// Network failures and timeouts map to syncerr.Transport. Non-2xx answers map to
// syncerr.ServerRejected with the message taken from a {"message"} or {"error"} body.
// Plans that are not valid JSON or violate the plan JSON schema map to syncerr.DecodeFailed;
// their bodies are handed to the configured PayloadArchiver so schema drift can be diagnosed.
package protocol
