package bitlog

import (
	"bufio"
	"fmt"
	"net"
	"time"
)

// Client is a connection to a Server. It is not safe for concurrent use;
// open one client per goroutine.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
}

// Dial connects to a server at addr.
func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, reader: bufio.NewReader(conn)}, nil
}

// Get fetches the value for key, or ErrKeyNotFound.
func (c *Client) Get(key string) (string, error) {
	resp, err := c.roundTrip(Request{Op: OpGet, Key: key})
	if err != nil {
		return "", err
	}
	return resp.Value, nil
}

// Set stores value under key.
func (c *Client) Set(key, value string) error {
	_, err := c.roundTrip(Request{Op: OpSet, Key: key, Value: value})
	return err
}

// Remove deletes key, or returns ErrKeyNotFound.
func (c *Client) Remove(key string) error {
	_, err := c.roundTrip(Request{Op: OpRemove, Key: key})
	return err
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) roundTrip(req Request) (Response, error) {
	if err := writeMessage(c.conn, req); err != nil {
		return Response{}, err
	}
	var resp Response
	if err := readMessage(c.reader, &resp); err != nil {
		return Response{}, err
	}
	switch resp.Status {
	case StatusOK:
		return resp, nil
	case StatusNotFound:
		return Response{}, ErrKeyNotFound
	default:
		return Response{}, fmt.Errorf("bitlog: server error: %s", resp.Error)
	}
}
