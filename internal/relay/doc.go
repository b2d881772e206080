// Package relay implements the same-origin forwarding path in front of the
// identity backend.
//
// It exists so development deployments can keep every request same-origin:
// the presentation layer talks to the relay, and the relay rewrites to the
// backend's base URL, preserving method, JSON body, and status. Three
// surfaces are exposed:
//
//   - POST /auth/login — translates the local secret field to the
//     backend's "password" and flattens {user, token} responses.
//   - POST /auth/register — forwards the registration body verbatim.
//   - GET|POST /proxy/* — relays arbitrary sub-paths, including the
//     Authorization header.
//
// Non-JSON upstream responses are never passed through raw; they are
// converted into a structured {"message": ...} JSON error carrying the
// upstream status. Request counts and latencies are recorded with
// Prometheus when a registerer is supplied.
package relay
