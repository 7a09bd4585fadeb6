package handler

import (
	"toolmart/internal/usecase"
)

var (
	userHandler        *UserHandler
	listingHandler     *ListingHandler
	negotiationHandler *NegotiationHandler
	messagingHandler   *MessagingHandler
)

func Setup(
	userUseCase *usecase.UserUseCase,
	listingUseCase *usecase.ListingUseCase,
	negotiationUseCase *usecase.NegotiationUseCase,
	messagingUseCase *usecase.MessagingUseCase,
) {
	userHandler = NewUserHandler(userUseCase)
	listingHandler = NewListingHandler(listingUseCase)
	negotiationHandler = NewNegotiationHandler(negotiationUseCase)
	messagingHandler = NewMessagingHandler(messagingUseCase)
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetListingHandler() *ListingHandler {
	return listingHandler
}

func GetNegotiationHandler() *NegotiationHandler {
	return negotiationHandler
}

func GetMessagingHandler() *MessagingHandler {
	return messagingHandler
}
