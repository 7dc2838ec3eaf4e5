package interp

// Item is one entry of a List: a named blob of bytes.
type Item struct {
	Name string
	Data []byte
}

// List is the ordered item list a script runs against.
type List struct {
	Items []Item
}

// Len returns the number of items.
func (l *List) Len() int {
	return len(l.Items)
}

// Append adds items at the end of the list.
func (l *List) Append(items ...Item) {
	l.Items = append(l.Items, items...)
}

// Insert places item at pos. Out-of-range positions append.
func (l *List) Insert(pos int, item Item) {
	if pos < 0 || pos >= len(l.Items) {
		l.Items = append(l.Items, item)
		return
	}
	l.Items = append(l.Items, Item{})
	copy(l.Items[pos+1:], l.Items[pos:])
	l.Items[pos] = item
}

// Clear removes every item.
func (l *List) Clear() {
	l.Items = nil
}

// Reverse reverses the item order in place.
func (l *List) Reverse() {
	for i, j := 0, len(l.Items)-1; i < j; i, j = i+1, j-1 {
		l.Items[i], l.Items[j] = l.Items[j], l.Items[i]
	}
}

// Names lists item names in order.
func (l *List) Names() []string {
	names := make([]string, len(l.Items))
	for i, it := range l.Items {
		names[i] = it.Name
	}
	return names
}
