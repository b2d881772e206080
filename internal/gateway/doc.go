// Package gateway performs login and register calls against the identity
// backend and turns their responses into the canonical Session.
//
// The gateway owns the field-name translation between the local concepts
// (secret/senha) and the backend's wire format (password), the three-way
// response ladder (empty body, non-JSON body, rejected request), and the
// store update on success. Transport can be routed directly at the backend
// or through the same-origin relay; the mode changes URL construction only,
// never the resulting Session.
//
// The error taxonomy defined here (ErrEmptyResponse, InvalidResponseError,
// RequestRejectedError) is shared with the client package, which applies
// the same rejection semantics to authenticated calls.
package gateway
