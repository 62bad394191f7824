// Package pb describes the sleepalarm.v1.PanelService gRPC API used by the
// control panel. Messages are google.protobuf.Struct values whose keys are
// listed in this package, so the service needs no generated message code.
package pb
