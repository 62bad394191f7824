// Package panel implements the gRPC transport of the control panel.
//
// It converts domain values to the Struct messages of the panel service and
// forwards presses and setting changes to a business-service interface.
package panel
