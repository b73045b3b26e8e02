package event

import "strconv"

// Code is the stable integer tag of a broadcast event.
type Code int

const (
	AddNewSeats         Code = 10003
	RemoveSeats         Code = 10004
	UnMuteSeat          Code = 10005
	IsMicOpened         Code = 10006
	LockSeat            Code = 10007
	MuteSeat            Code = 10008
	TakeSeat            Code = 10009
	SwitchSeat          Code = 10010
	LeaveSeat           Code = 10011
	RemoveUserFromSeat  Code = 10012
	KickOutUser         Code = 10013
	ClearChat           Code = 10014
	InviteUserToTakeMic Code = 10015
	SendGift            Code = 10016
	RequestTakeMic      Code = 10017
	SendMessage         Code = 10018
)

var codeNames = map[Code]string{
	AddNewSeats:         "addNewSeats",
	RemoveSeats:         "removeSeats",
	UnMuteSeat:          "unMuteSeat",
	IsMicOpened:         "isMicOpened",
	LockSeat:            "lockSeat",
	MuteSeat:            "muteSeat",
	TakeSeat:            "takeSeat",
	SwitchSeat:          "switchSeat",
	LeaveSeat:           "leaveSeat",
	RemoveUserFromSeat:  "removeUserFromSeat",
	KickOutUser:         "kickOutUser",
	ClearChat:           "clearChat",
	InviteUserToTakeMic: "inviteUserToTakeMic",
	SendGift:            "sendGift",
	RequestTakeMic:      "requestTakeMic",
	SendMessage:         "sendMessage",
}

func (c Code) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return "event(" + strconv.Itoa(int(c)) + ")"
}

// Known reports whether c is one of the defined codes.
func (c Code) Known() bool {
	_, ok := codeNames[c]
	return ok
}
