package telegram

import (
	"context"
	"strconv"
	"sync"

	"github.com/gotd/td/tg"

	"github.com/turtacn/tgroups/internal/domain/models"
	"github.com/turtacn/tgroups/pkg/constants"
)

// dialogsAPI is the part of *tg.Client used to enumerate conversations.
type dialogsAPI interface {
	MessagesGetDialogs(ctx context.Context, request *tg.MessagesGetDialogsRequest) (tg.MessagesDialogsClass, error)
}

// peerCache remembers channel access hashes seen while enumerating dialogs.
type peerCache struct {
	mu       sync.RWMutex
	channels map[int64]int64
}

func newPeerCache() *peerCache {
	return &peerCache{channels: make(map[int64]int64)}
}

func (c *peerCache) putChannel(id, accessHash int64) {
	c.mu.Lock()
	c.channels[id] = accessHash
	c.mu.Unlock()
}

func (c *peerCache) channel(id int64) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.channels[id]
	return h, ok
}

// dialogPage is one response of messages.getDialogs flattened.
type dialogPage struct {
	dialogs  []tg.DialogClass
	messages []tg.MessageClass
	chats    []tg.ChatClass
	users    []tg.UserClass
	// final is set when the server reported the list complete
	final bool
}

func unpackDialogs(res tg.MessagesDialogsClass) dialogPage {
	switch d := res.(type) {
	case *tg.MessagesDialogs:
		return dialogPage{dialogs: d.Dialogs, messages: d.Messages, chats: d.Chats, users: d.Users, final: true}
	case *tg.MessagesDialogsSlice:
		return dialogPage{dialogs: d.Dialogs, messages: d.Messages, chats: d.Chats, users: d.Users}
	default:
		return dialogPage{final: true}
	}
}

// fetchFolder pages through one dialog folder and appends its conversations to out in server order.
// seen holds the ids already collected, across folders.
func fetchFolder(ctx context.Context, api dialogsAPI, cache *peerCache, folderID, pageSize int, seen map[string]struct{}, out []models.Conversation) ([]models.Conversation, error) {
	req := &tg.MessagesGetDialogsRequest{
		OffsetPeer: &tg.InputPeerEmpty{},
		Limit:      pageSize,
	}
	if folderID != 0 {
		req.SetFolderID(folderID)
	}

	for {
		res, err := api.MessagesGetDialogs(ctx, req)
		if err != nil {
			return out, classify(err)
		}
		page := unpackDialogs(res)
		chats := indexChats(page.chats, cache)

		added := 0
		for _, dc := range page.dialogs {
			d, ok := dc.(*tg.Dialog)
			if !ok {
				continue
			}
			conv, ok := toConversation(d, chats, folderID == constants.ArchiveFolderID)
			if !ok {
				continue
			}
			if _, dup := seen[conv.ID]; dup {
				continue
			}
			seen[conv.ID] = struct{}{}
			out = append(out, conv)
			added++
		}

		if page.final || len(page.dialogs) < pageSize || added == 0 {
			return out, nil
		}
		next, ok := nextOffset(page)
		if !ok {
			return out, nil
		}
		req.OffsetDate, req.OffsetID, req.OffsetPeer = next.date, next.id, next.peer
	}
}

type offset struct {
	date int
	id   int
	peer tg.InputPeerClass
}

// nextOffset derives the paging offset from the last dialog of a page.
func nextOffset(page dialogPage) (offset, bool) {
	if len(page.dialogs) == 0 {
		return offset{}, false
	}
	last, ok := page.dialogs[len(page.dialogs)-1].(*tg.Dialog)
	if !ok {
		return offset{}, false
	}
	peer, ok := inputPeer(last.Peer, page.chats, page.users)
	if !ok {
		return offset{}, false
	}
	o := offset{id: last.TopMessage, peer: peer}
	for _, m := range page.messages {
		if m.GetID() != last.TopMessage {
			continue
		}
		switch msg := m.(type) {
		case *tg.Message:
			o.date = msg.Date
		case *tg.MessageService:
			o.date = msg.Date
		}
		break
	}
	return o, true
}

func inputPeer(p tg.PeerClass, chats []tg.ChatClass, users []tg.UserClass) (tg.InputPeerClass, bool) {
	switch peer := p.(type) {
	case *tg.PeerUser:
		for _, u := range users {
			if user, ok := u.(*tg.User); ok && user.ID == peer.UserID {
				return &tg.InputPeerUser{UserID: user.ID, AccessHash: user.AccessHash}, true
			}
		}
	case *tg.PeerChat:
		return &tg.InputPeerChat{ChatID: peer.ChatID}, true
	case *tg.PeerChannel:
		for _, c := range chats {
			switch ch := c.(type) {
			case *tg.Channel:
				if ch.ID == peer.ChannelID {
					return &tg.InputPeerChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash}, true
				}
			case *tg.ChannelForbidden:
				if ch.ID == peer.ChannelID {
					return &tg.InputPeerChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash}, true
				}
			}
		}
	}
	return nil, false
}

type chatInfo struct {
	title string
	kind  models.ConversationKind
}

// indexChats maps marked ids to chat info and records channel access hashes.
func indexChats(chats []tg.ChatClass, cache *peerCache) map[string]chatInfo {
	out := make(map[string]chatInfo, len(chats))
	for _, c := range chats {
		switch ch := c.(type) {
		case *tg.Chat:
			out[chatMarkedID(ch.ID)] = chatInfo{title: ch.Title, kind: models.ConversationChat}
		case *tg.ChatForbidden:
			out[chatMarkedID(ch.ID)] = chatInfo{title: ch.Title, kind: models.ConversationChat}
		case *tg.Channel:
			cache.putChannel(ch.ID, ch.AccessHash)
			out[channelMarkedID(ch.ID)] = chatInfo{title: ch.Title, kind: channelKind(ch.Broadcast)}
		case *tg.ChannelForbidden:
			cache.putChannel(ch.ID, ch.AccessHash)
			out[channelMarkedID(ch.ID)] = chatInfo{title: ch.Title, kind: channelKind(ch.Broadcast)}
		}
	}
	return out
}

func channelKind(broadcast bool) models.ConversationKind {
	if broadcast {
		return models.ConversationBroadcast
	}
	return models.ConversationMegagroup
}

// toConversation shapes a dialog. Dialogs with users are returned with ConversationUser.
func toConversation(d *tg.Dialog, chats map[string]chatInfo, archivedFolder bool) (models.Conversation, bool) {
	conv := models.Conversation{
		UnreadCount: d.UnreadCount,
		Archived:    archivedFolder || d.FolderID == constants.ArchiveFolderID,
	}
	switch p := d.Peer.(type) {
	case *tg.PeerUser:
		conv.ID = strconv.FormatInt(p.UserID, 10)
		conv.Kind = models.ConversationUser
		return conv, true
	case *tg.PeerChat:
		conv.ID = chatMarkedID(p.ChatID)
	case *tg.PeerChannel:
		conv.ID = channelMarkedID(p.ChannelID)
	default:
		return conv, false
	}
	info, ok := chats[conv.ID]
	if !ok {
		return conv, false
	}
	conv.Title = info.title
	conv.Kind = info.kind
	return conv, true
}

func chatMarkedID(id int64) string {
	return constants.ChatIDPrefix + strconv.FormatInt(id, 10)
}

func channelMarkedID(id int64) string {
	return constants.ChannelIDPrefix + strconv.FormatInt(id, 10)
}
