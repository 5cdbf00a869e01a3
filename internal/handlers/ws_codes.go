// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the room socket. These give more
// specific reasons for closure than the standard codes.
const (
	BadSubprotocolError   = 3000 // Client connected with an unsupported subprotocol.
	InvalidAuthTokenError = 3001 // Seat token missing, invalid, expired or for another room.
	NotSeatedError        = 3002 // Token is valid but the player holds no seat in the room.
	RoomGoneError         = 3003 // Room was removed while the socket was open.
)
