// Package oxidbtest runs an in-process oxidb-server speaking the wire
// protocol over loopback TCP. It keeps documents and blobs in memory and
// understands the subset of commands the repositories issue.
package oxidbtest

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"reflect"
	"sort"
	"sync"
	"time"
)

type object struct {
	content     string
	contentType string
}

// Server is a fake oxidb-server listening on a loopback port.
type Server struct {
	Addr string

	ln    net.Listener
	wg    sync.WaitGroup
	mu    sync.Mutex
	delay time.Duration

	colls   map[string][]map[string]any
	nextID  map[string]float64
	uniques map[string][]string
	buckets map[string]map[string]object
	conns   map[net.Conn]struct{}
}

// NewServer starts a server. Callers must Close it.
func NewServer() *Server {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		panic(fmt.Sprintf("oxidbtest: failed to listen: %v", err))
	}
	s := &Server{
		Addr:    ln.Addr().String(),
		ln:      ln,
		colls:   map[string][]map[string]any{},
		nextID:  map[string]float64{},
		uniques: map[string][]string{},
		buckets: map[string]map[string]object{},
		conns:   map[net.Conn]struct{}{},
	}
	s.wg.Add(1)
	go s.serve()
	return s
}

// SetDelay makes every response wait d before being written.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	s.delay = d
	s.mu.Unlock()
}

// Docs returns a copy of a collection's documents in insertion order.
func (s *Server) Docs(collection string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.colls[collection]))
	for _, d := range s.colls[collection] {
		out = append(out, copyDoc(d))
	}
	return out
}

func (s *Server) Close() {
	s.ln.Close()
	s.mu.Lock()
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()
		s.wg.Add(1)
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()
	for {
		var lenBuf [4]byte
		if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
			return
		}
		payload := make([]byte, binary.LittleEndian.Uint32(lenBuf[:]))
		if _, err := io.ReadFull(conn, payload); err != nil {
			return
		}
		var req map[string]any
		resp := map[string]any{}
		if err := json.Unmarshal(payload, &req); err != nil {
			resp["ok"], resp["error"] = false, "invalid json"
		} else if data, err := s.dispatch(req); err != nil {
			resp["ok"], resp["error"] = false, err.Error()
		} else {
			resp["ok"], resp["data"] = true, data
		}

		s.mu.Lock()
		delay := s.delay
		s.mu.Unlock()
		if delay > 0 {
			time.Sleep(delay)
		}
		out, _ := json.Marshal(resp)
		frame := make([]byte, 4+len(out))
		binary.LittleEndian.PutUint32(frame, uint32(len(out)))
		copy(frame[4:], out)
		if _, err := conn.Write(frame); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(req map[string]any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, _ := req["collection"].(string)
	query, _ := req["query"].(map[string]any)
	switch cmd, _ := req["cmd"].(string); cmd {
	case "ping":
		return "pong", nil
	case "create_collection", "create_index", "create_composite_index":
		return "ok", nil
	case "create_unique_index":
		field, _ := req["field"].(string)
		s.uniques[coll] = append(s.uniques[coll], field)
		return "ok", nil
	case "insert":
		doc, _ := req["doc"].(map[string]any)
		return s.insert(coll, doc)
	case "find":
		return s.find(coll, query, req), nil
	case "find_one":
		for _, d := range s.colls[coll] {
			if matches(d, query) {
				return copyDoc(d), nil
			}
		}
		return nil, nil
	case "count":
		n := 0
		for _, d := range s.colls[coll] {
			if matches(d, query) {
				n++
			}
		}
		return map[string]any{"count": n}, nil
	case "update_one":
		update, _ := req["update"].(map[string]any)
		for i, d := range s.colls[coll] {
			if matches(d, query) {
				s.colls[coll][i] = applyUpdate(d, update)
				return map[string]any{"modified": 1}, nil
			}
		}
		return map[string]any{"modified": 0}, nil
	case "delete", "delete_one":
		kept := s.colls[coll][:0]
		n := 0
		for _, d := range s.colls[coll] {
			if matches(d, query) && (cmd == "delete" || n == 0) {
				n++
				continue
			}
			kept = append(kept, d)
		}
		s.colls[coll] = kept
		return map[string]any{"deleted": n}, nil
	case "create_bucket":
		bucket, _ := req["bucket"].(string)
		if s.buckets[bucket] == nil {
			s.buckets[bucket] = map[string]object{}
		}
		return "ok", nil
	case "put_object":
		bucket, _ := req["bucket"].(string)
		key, _ := req["key"].(string)
		b, ok := s.buckets[bucket]
		if !ok {
			return nil, fmt.Errorf("bucket not found: %s", bucket)
		}
		content, _ := req["data"].(string)
		ct, _ := req["content_type"].(string)
		b[key] = object{content: content, contentType: ct}
		return map[string]any{"key": key}, nil
	case "get_object":
		bucket, _ := req["bucket"].(string)
		key, _ := req["key"].(string)
		obj, ok := s.buckets[bucket][key]
		if !ok {
			return nil, fmt.Errorf("object not found: %s/%s", bucket, key)
		}
		return map[string]any{
			"content":  obj.content,
			"metadata": map[string]any{"content_type": obj.contentType},
		}, nil
	case "delete_object":
		bucket, _ := req["bucket"].(string)
		key, _ := req["key"].(string)
		delete(s.buckets[bucket], key)
		return "ok", nil
	default:
		return nil, fmt.Errorf("unknown command: %s", cmd)
	}
}

func (s *Server) insert(coll string, doc map[string]any) (any, error) {
	for _, field := range s.uniques[coll] {
		v, ok := doc[field]
		if !ok {
			continue
		}
		for _, d := range s.colls[coll] {
			if reflect.DeepEqual(d[field], v) {
				return nil, fmt.Errorf("duplicate key for unique index on %s", field)
			}
		}
	}
	s.nextID[coll]++
	id := s.nextID[coll]
	stored := copyDoc(doc)
	stored["_id"] = id
	s.colls[coll] = append(s.colls[coll], stored)
	return map[string]any{"id": id}, nil
}

func (s *Server) find(coll string, query, req map[string]any) []map[string]any {
	out := []map[string]any{}
	for _, d := range s.colls[coll] {
		if matches(d, query) {
			out = append(out, copyDoc(d))
		}
	}
	if sortBy, ok := req["sort"].(map[string]any); ok {
		for field, dir := range sortBy {
			desc := dir == float64(-1)
			sort.SliceStable(out, func(i, j int) bool {
				c := compare(out[i][field], out[j][field])
				if desc {
					return c > 0
				}
				return c < 0
			})
		}
	}
	if skip, ok := req["skip"].(float64); ok {
		if int(skip) >= len(out) {
			out = out[:0]
		} else {
			out = out[int(skip):]
		}
	}
	if limit, ok := req["limit"].(float64); ok && int(limit) < len(out) {
		out = out[:int(limit)]
	}
	return out
}

func matches(doc, query map[string]any) bool {
	for k, want := range query {
		got := doc[k]
		if op, ok := want.(map[string]any); ok {
			if in, ok := op["$in"].([]any); ok {
				found := false
				for _, v := range in {
					if reflect.DeepEqual(got, v) {
						found = true
						break
					}
				}
				if !found {
					return false
				}
				continue
			}
		}
		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func applyUpdate(doc, update map[string]any) map[string]any {
	set, ok := update["$set"].(map[string]any)
	if !ok {
		set = update
	}
	out := copyDoc(doc)
	for k, v := range set {
		out[k] = v
	}
	return out
}

func compare(a, b any) int {
	switch x := a.(type) {
	case float64:
		y, _ := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	case string:
		y, _ := b.(string)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

func copyDoc(d map[string]any) map[string]any {
	out := make(map[string]any, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
