package routes

import (
	"mercado/auth"
	"mercado/chats"
	"mercado/messages"
	"mercado/middleware"
	"mercado/orders"
	"mercado/ratelim"
	"mercado/relay"

	"github.com/julienschmidt/httprouter"
)

func AddAuthRoutes(router *httprouter.Router) {
	router.POST("/api/auth/register", ratelim.RateLimit(auth.Register))
	router.POST("/api/auth/login", ratelim.RateLimit(auth.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.Logout))
}

func AddOrderRoutes(router *httprouter.Router) {
	router.POST("/api/orders", ratelim.RateLimit(middleware.Authenticate(orders.Idempotent(orders.CreateOrder))))
	router.GET("/api/orders/order/:orderid", middleware.Authenticate(orders.GetOrder))
	router.GET("/api/orders/user/:userid", middleware.Authenticate(orders.GetOrdersByCustomer))
	router.GET("/api/orders/seller/:sellerid", middleware.Authenticate(orders.GetOrdersBySeller))
	router.PATCH("/api/orders/order/:orderid/status", ratelim.RateLimit(middleware.Authenticate(orders.UpdateOrderStatus)))
	router.GET("/api/orders/order/:orderid/invoice", middleware.Authenticate(orders.PrintInvoice))
}

func AddChatRoutes(router *httprouter.Router) {
	router.POST("/api/chats", ratelim.RateLimit(middleware.Authenticate(chats.CreateChat)))
	router.GET("/api/chats/user/:userid", middleware.Authenticate(chats.GetUserChats))
	router.GET("/api/chats/chat/:chatid", middleware.Authenticate(chats.GetChat))
	router.PUT("/api/chats/chat/:chatid", middleware.Authenticate(chats.UpdateChat))
	router.PATCH("/api/chats/chat/:chatid/last-message", middleware.Authenticate(chats.UpdateLastMessage))
	router.DELETE("/api/chats/chat/:chatid", middleware.Authenticate(chats.DeleteChat))
}

// AddMessageRoutes wires the REST message path; sends are pushed live to any
// sockets joined to the chat room through the hub.
func AddMessageRoutes(router *httprouter.Router, hub *relay.Hub) {
	router.POST("/api/messages", ratelim.RateLimit(middleware.Authenticate(messages.CreateMessage(hub))))
	router.GET("/api/messages/:chatid", middleware.Authenticate(messages.GetMessages))
}

func AddRelayRoutes(router *httprouter.Router, hub *relay.Hub) {
	router.GET("/ws/chat", relay.ChatSocketHandler(hub))
}
